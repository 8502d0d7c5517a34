package security_test

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/security"
)

func testHasher() security.Hasher {
	return security.NewHasher(config.PasswordConfig{ScryptN: 1024, ScryptR: 8, ScryptP: 1})
}

func TestHashAndVerifyRoundTrip(t *testing.T) {
	h := testHasher()
	for _, password := range []string{"very-secure-password", "çãé unicode", "a"} {
		stored, err := h.Hash(password)
		if err != nil {
			t.Fatalf("Hash returned error: %v", err)
		}
		parts := strings.Split(stored, ".")
		if len(parts) != 2 || len(parts[0]) != 128 || len(parts[1]) != 32 {
			t.Fatalf("unexpected encoding %q", stored)
		}
		if !h.VerifyPassword(password, stored) {
			t.Fatalf("expected %q to verify against its own hash", password)
		}
		if h.VerifyPassword(password+"x", stored) {
			t.Fatalf("expected different password to fail")
		}
		if security.NeedsRehash(security.ParseCredential(stored)) {
			t.Fatalf("fresh hash should not need rehash")
		}
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := testHasher()
	first, _ := h.Hash("same")
	second, _ := h.Hash("same")
	if first == second {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	if _, err := testHasher().Hash(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestVerifyMalformedNeverPanics(t *testing.T) {
	h := testHasher()
	for _, stored := range []string{
		"aa.bb.cc",
		"zz.11",
		"abcd.",
		".abcd",
		"",
		"abcd.zz",
	} {
		cred := security.ParseCredential(stored)
		if cred.Scheme() != security.SchemeMalformed {
			t.Fatalf("%q: expected malformed, got %s", stored, cred.Scheme())
		}
		if h.Verify("password", cred) {
			t.Fatalf("%q: malformed credential must not verify", stored)
		}
		if !security.NeedsRehash(cred) {
			t.Fatalf("%q: malformed credential should need rehash", stored)
		}
	}
}

func TestVerifyShortScryptDigestFails(t *testing.T) {
	h := testHasher()
	cred := security.ParseCredential("abcd.abcd")
	if cred.Scheme() != security.SchemeScrypt {
		t.Fatalf("expected scrypt shape, got %s", cred.Scheme())
	}
	if h.Verify("password", cred) {
		t.Fatalf("digest length mismatch must not verify")
	}
	if !security.NeedsRehash(cred) {
		t.Fatalf("digest length mismatch should need rehash")
	}
}

func TestLegacyDigests(t *testing.T) {
	h := testHasher()
	sum512 := sha512.Sum512([]byte("legacy"))
	stored512 := hex.EncodeToString(sum512[:])
	cred := security.ParseCredential(stored512)
	if cred.Scheme() != security.SchemeLegacySHA512 {
		t.Fatalf("expected sha512 scheme, got %s", cred.Scheme())
	}
	if !h.Verify("legacy", cred) || h.Verify("other", cred) {
		t.Fatalf("sha512 verification mismatch")
	}
	if !security.NeedsRehash(cred) {
		t.Fatalf("legacy sha512 should need rehash")
	}

	sum256 := sha256.Sum256([]byte("legacy"))
	stored256 := hex.EncodeToString(sum256[:])
	cred = security.ParseCredential(stored256)
	if cred.Scheme() != security.SchemeLegacySHA256 {
		t.Fatalf("expected sha256 scheme, got %s", cred.Scheme())
	}
	if !h.Verify("legacy", cred) {
		t.Fatalf("sha256 verification failed")
	}
	if !security.NeedsRehash(security.ParseCredential(strings.Repeat("a", 64))) {
		t.Fatalf("bare 64-char hex should need rehash")
	}
}

func TestPlaintextFallback(t *testing.T) {
	h := testHasher()
	cred := security.ParseCredential("hunter2")
	if cred.Scheme() != security.SchemePlaintext {
		t.Fatalf("expected plaintext scheme, got %s", cred.Scheme())
	}
	if !h.Verify("hunter2", cred) {
		t.Fatalf("plaintext row should verify by equality")
	}
	if h.Verify("hunter3", cred) {
		t.Fatalf("plaintext mismatch should fail")
	}
	if h.Verify("", security.ParseCredential("")) {
		t.Fatalf("empty password must never verify")
	}
	if !security.NeedsRehash(cred) {
		t.Fatalf("plaintext should need rehash")
	}
}

func TestCredentialStringRoundTrip(t *testing.T) {
	stored, err := testHasher().Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if got := security.ParseCredential(stored).String(); got != stored {
		t.Fatalf("expected %q got %q", stored, got)
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := security.GenerateTempPassword(12)
	if err != nil {
		t.Fatalf("GenerateTempPassword: %v", err)
	}
	if len(pw) != 12 {
		t.Fatalf("expected 12 chars, got %d", len(pw))
	}
	if _, err := security.GenerateTempPassword(0); err == nil {
		t.Fatalf("expected error for zero length")
	}
}
