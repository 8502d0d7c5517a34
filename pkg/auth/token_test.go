package auth

import (
	"testing"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "detailshop",
		SessionTTLMinutes: 30,
	}
}

func TestMintAndParseSessionToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	adminID := uuid.New()

	token, err := MintSessionToken(cfg, now, SessionTokenPayload{
		Kind:      PrincipalAdmin,
		SubjectID: adminID,
		Role:      enums.AdminRoleStaff,
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("mint session token: %v", err)
	}

	claims, err := ParseSessionToken(cfg, token)
	if err != nil {
		t.Fatalf("parse session token: %v", err)
	}
	if claims.SubjectID != adminID {
		t.Fatalf("expected subject %s, got %s", adminID, claims.SubjectID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %s", claims.Issuer)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(now) {
		t.Fatalf("expected expiry in the future")
	}

	principal := claims.Principal()
	if !principal.IsAdmin() || principal.SessionID != "sess-1" {
		t.Fatalf("unexpected principal %+v", principal)
	}
	if !principal.HasRole(enums.AdminRoleStaff) || principal.HasRole(enums.AdminRoleAdmin) {
		t.Fatalf("staff principal role checks wrong")
	}
}

func TestMintSessionTokenValidation(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	if _, err := MintSessionToken(cfg, now, SessionTokenPayload{Kind: "robot", SessionID: "x"}); err == nil {
		t.Fatalf("expected invalid kind to fail")
	}
	if _, err := MintSessionToken(cfg, now, SessionTokenPayload{Kind: PrincipalAdmin, Role: "owner", SessionID: "x"}); err == nil {
		t.Fatalf("expected invalid admin role to fail")
	}
	if _, err := MintSessionToken(cfg, now, SessionTokenPayload{Kind: PrincipalCustomer}); err == nil {
		t.Fatalf("expected missing session id to fail")
	}
	cfg.Secret = ""
	if _, err := MintSessionToken(cfg, now, SessionTokenPayload{Kind: PrincipalCustomer, SessionID: "x"}); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestParseSessionTokenRejectsWrongSecretAndExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintSessionToken(cfg, time.Now(), SessionTokenPayload{
		Kind:      PrincipalCustomer,
		SubjectID: uuid.New(),
		SessionID: "sess-2",
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	other := cfg
	other.Secret = "different"
	if _, err := ParseSessionToken(other, token); err == nil {
		t.Fatalf("expected signature mismatch")
	}

	expired, err := MintSessionToken(cfg, time.Now().Add(-2*time.Hour), SessionTokenPayload{
		Kind:      PrincipalCustomer,
		SubjectID: uuid.New(),
		SessionID: "sess-3",
	})
	if err != nil {
		t.Fatalf("mint expired: %v", err)
	}
	if _, err := ParseSessionToken(cfg, expired); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestCustomerPrincipalHasNoAdminRole(t *testing.T) {
	p := &Principal{Kind: PrincipalCustomer, ID: uuid.New(), Role: enums.AdminRoleAdmin}
	if p.HasRole(enums.AdminRoleAdmin) {
		t.Fatalf("customers never hold admin roles")
	}
	var nilPrincipal *Principal
	if nilPrincipal.IsAdmin() || nilPrincipal.IsCustomer() || nilPrincipal.Subject() != "" {
		t.Fatalf("nil principal must be anonymous")
	}
}
