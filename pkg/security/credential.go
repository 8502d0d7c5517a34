package security

import (
	"encoding/hex"
	"strings"
)

// Scheme identifies how a stored credential was produced.
type Scheme int

const (
	SchemeMalformed Scheme = iota
	SchemeScrypt
	SchemeLegacySHA512
	SchemeLegacySHA256
	SchemePlaintext
)

func (s Scheme) String() string {
	switch s {
	case SchemeScrypt:
		return "scrypt"
	case SchemeLegacySHA512:
		return "legacy_sha512"
	case SchemeLegacySHA256:
		return "legacy_sha256"
	case SchemePlaintext:
		return "plaintext"
	default:
		return "malformed"
	}
}

const (
	sha512HexLen = 128
	sha256HexLen = 64
)

// Credential is a stored password parsed once into its scheme.
type Credential struct {
	scheme Scheme
	digest []byte
	salt   string
	plain  string
}

// Scrypt builds a current-format credential. salt is the hex text fed to the KDF.
func Scrypt(digest []byte, salt string) Credential {
	return Credential{scheme: SchemeScrypt, digest: digest, salt: salt}
}

// LegacySHA512 wraps an unsalted SHA-512 digest.
func LegacySHA512(digest []byte) Credential {
	return Credential{scheme: SchemeLegacySHA512, digest: digest}
}

// LegacySHA256 wraps an unsalted SHA-256 digest.
func LegacySHA256(digest []byte) Credential {
	return Credential{scheme: SchemeLegacySHA256, digest: digest}
}

// Plaintext wraps a row that was stored without hashing.
func Plaintext(value string) Credential {
	return Credential{scheme: SchemePlaintext, plain: value}
}

func malformed() Credential {
	return Credential{scheme: SchemeMalformed}
}

// ParseCredential classifies a stored value by shape. It never fails; values
// that can not be verified come back as SchemeMalformed.
func ParseCredential(stored string) Credential {
	if stored == "" {
		return malformed()
	}
	if strings.Contains(stored, ".") {
		parts := strings.Split(stored, ".")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return malformed()
		}
		digest, err := hex.DecodeString(parts[0])
		if err != nil {
			return malformed()
		}
		if _, err := hex.DecodeString(parts[1]); err != nil {
			return malformed()
		}
		return Scrypt(digest, parts[1])
	}
	if len(stored) == sha512HexLen || len(stored) == sha256HexLen {
		if digest, err := hex.DecodeString(stored); err == nil {
			if len(stored) == sha512HexLen {
				return LegacySHA512(digest)
			}
			return LegacySHA256(digest)
		}
	}
	return Plaintext(stored)
}

// Scheme reports how the credential was produced.
func (c Credential) Scheme() Scheme {
	return c.scheme
}

// String returns the storage encoding.
func (c Credential) String() string {
	switch c.scheme {
	case SchemeScrypt:
		return hex.EncodeToString(c.digest) + "." + c.salt
	case SchemeLegacySHA512, SchemeLegacySHA256:
		return hex.EncodeToString(c.digest)
	case SchemePlaintext:
		return c.plain
	default:
		return ""
	}
}
