package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"golang.org/x/crypto/scrypt"
)

const (
	scryptKeyLen  = 64
	scryptSaltLen = 16
)

var tempPasswordCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// ScryptParams are the cost parameters shared by hashing and verification.
// The storage format does not embed them, so they must stay stable.
type ScryptParams struct {
	N int
	R int
	P int
}

// Hasher hashes and verifies credentials.
type Hasher struct {
	params ScryptParams
}

// NewHasher builds a hasher from configuration, falling back to the
// defaults for unset values.
func NewHasher(cfg config.PasswordConfig) Hasher {
	params := DefaultParams()
	if cfg.ScryptN > 1 && cfg.ScryptN&(cfg.ScryptN-1) == 0 {
		params.N = cfg.ScryptN
	}
	if cfg.ScryptR > 0 {
		params.R = cfg.ScryptR
	}
	if cfg.ScryptP > 0 {
		params.P = cfg.ScryptP
	}
	return Hasher{params: params}
}

// DefaultParams returns N=16384, r=8, p=1.
func DefaultParams() ScryptParams {
	return ScryptParams{N: 16384, R: 8, P: 1}
}

// Hash derives a fresh salted credential encoded as <digestHex>.<saltHex>.
func (h Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	raw := make([]byte, scryptSaltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)
	digest, err := h.derive(password, salt)
	if err != nil {
		return "", err
	}
	return Scrypt(digest, salt).String(), nil
}

// Verify checks password against a parsed credential in constant time.
// It never panics; unverifiable credentials return false.
func (h Hasher) Verify(password string, cred Credential) bool {
	if password == "" {
		return false
	}
	switch cred.scheme {
	case SchemeScrypt:
		if len(cred.digest) != scryptKeyLen {
			return false
		}
		computed, err := h.derive(password, cred.salt)
		if err != nil {
			return false
		}
		return subtle.ConstantTimeCompare(cred.digest, computed) == 1
	case SchemeLegacySHA512:
		sum := sha512.Sum512([]byte(password))
		return subtle.ConstantTimeCompare(cred.digest, sum[:]) == 1
	case SchemeLegacySHA256:
		sum := sha256.Sum256([]byte(password))
		return subtle.ConstantTimeCompare(cred.digest, sum[:]) == 1
	case SchemePlaintext:
		return subtle.ConstantTimeCompare([]byte(cred.plain), []byte(password)) == 1
	default:
		return false
	}
}

// VerifyPassword parses stored and verifies password against it.
func (h Hasher) VerifyPassword(password, stored string) bool {
	return h.Verify(password, ParseCredential(stored))
}

// NeedsRehash reports whether the credential is not in the current format.
func NeedsRehash(cred Credential) bool {
	return cred.scheme != SchemeScrypt || len(cred.digest) != scryptKeyLen
}

func (h Hasher) derive(password, salt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), h.params.N, h.params.R, h.params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt: %w", err)
	}
	return key, nil
}

// GenerateTempPassword produces a random string suitable for temporary credentials.
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	result := make([]rune, length)
	for i := 0; i < length; i++ {
		idx, err := randInt(len(tempPasswordCharset))
		if err != nil {
			return "", err
		}
		result[i] = tempPasswordCharset[idx]
	}
	return string(result), nil
}

func randInt(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("invalid max %d", max)
	}
	var buff = make([]byte, 1)
	if _, err := rand.Read(buff); err != nil {
		return 0, err
	}
	return int(buff[0]) % max, nil
}
