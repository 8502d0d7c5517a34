package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/auth/session"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/google/uuid"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", SessionTTLMinutes: 60, CookieName: "detailshop_session"}

type stubSessions struct {
	ok  bool
	err error
}

func (s stubSessions) Validate(context.Context, string, string) (bool, error) {
	return s.ok, s.err
}

func mintTestToken(t *testing.T, kind auth.PrincipalKind, role enums.AdminRole) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	token, err := auth.MintSessionToken(testJWT, time.Now(), auth.SessionTokenPayload{
		Kind:      kind,
		SubjectID: id,
		Role:      role,
		SessionID: session.NewSessionID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, id
}

func capturePrincipal(target **auth.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*target = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestLoadPrincipalAnonymousWithoutToken(t *testing.T) {
	var got *auth.Principal
	handler := LoadPrincipal(testJWT, stubSessions{ok: true}, nil)(capturePrincipal(&got))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got != nil {
		t.Fatalf("expected anonymous request")
	}
}

func TestLoadPrincipalIgnoresInvalidToken(t *testing.T) {
	var got *auth.Principal
	handler := LoadPrincipal(testJWT, stubSessions{ok: true}, nil)(capturePrincipal(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || got != nil {
		t.Fatalf("invalid tokens should resolve to anonymous, got %d %+v", resp.Code, got)
	}
}

func TestLoadPrincipalFromBearerAndCookie(t *testing.T) {
	token, id := mintTestToken(t, auth.PrincipalAdmin, enums.AdminRoleStaff)

	var got *auth.Principal
	handler := LoadPrincipal(testJWT, stubSessions{ok: true}, nil)(capturePrincipal(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.ID != id || !got.IsAdmin() || got.Role != enums.AdminRoleStaff {
		t.Fatalf("unexpected principal %+v", got)
	}

	got = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testJWT.CookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.ID != id {
		t.Fatalf("cookie session should resolve, got %+v", got)
	}
}

func TestLoadPrincipalRevokedSession(t *testing.T) {
	token, _ := mintTestToken(t, auth.PrincipalCustomer, "")
	var got *auth.Principal
	handler := LoadPrincipal(testJWT, stubSessions{ok: false}, nil)(capturePrincipal(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got != nil {
		t.Fatalf("revoked session must not resolve")
	}
}

func TestLoadPrincipalSessionStoreFailure(t *testing.T) {
	token, _ := mintTestToken(t, auth.PrincipalCustomer, "")
	var got *auth.Principal
	handler := LoadPrincipal(testJWT, stubSessions{err: errors.New("redis down")}, nil)(capturePrincipal(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestGuards(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	admin := &auth.Principal{Kind: auth.PrincipalAdmin, ID: uuid.New(), Role: enums.AdminRoleAdmin}
	staff := &auth.Principal{Kind: auth.PrincipalAdmin, ID: uuid.New(), Role: enums.AdminRoleStaff}
	customer := &auth.Principal{Kind: auth.PrincipalCustomer, ID: uuid.New()}

	tests := []struct {
		name      string
		guard     func(http.Handler) http.Handler
		principal *auth.Principal
		want      int
	}{
		{"admin anonymous", RequireAdmin(nil), nil, http.StatusUnauthorized},
		{"admin customer", RequireAdmin(nil), customer, http.StatusUnauthorized},
		{"admin staff", RequireAdmin(nil), staff, http.StatusOK},
		{"role anonymous", RequireAdminRole(enums.AdminRoleAdmin, nil), nil, http.StatusUnauthorized},
		{"role staff", RequireAdminRole(enums.AdminRoleAdmin, nil), staff, http.StatusForbidden},
		{"role admin", RequireAdminRole(enums.AdminRoleAdmin, nil), admin, http.StatusOK},
		{"customer anonymous", RequireCustomer(nil), nil, http.StatusUnauthorized},
		{"customer admin", RequireCustomer(nil), admin, http.StatusUnauthorized},
		{"customer", RequireCustomer(nil), customer, http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.principal != nil {
			req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
		}
		resp := httptest.NewRecorder()
		tt.guard(ok).ServeHTTP(resp, req)
		if resp.Code != tt.want {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.want, resp.Code)
		}
	}
}
