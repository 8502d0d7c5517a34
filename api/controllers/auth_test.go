package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/detailshop-backend/api/middleware"
	"github.com/angelmondragon/detailshop-backend/internal/auth"
	"github.com/angelmondragon/detailshop-backend/internal/customers"
	"github.com/angelmondragon/detailshop-backend/internal/users"
	pkgAuth "github.com/angelmondragon/detailshop-backend/pkg/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubAuthService struct {
	admin      *auth.AdminSession
	customer   *auth.CustomerSession
	err        error
	loggedOut  *pkgAuth.Principal
	registered auth.RegisterRequest
}

func (s *stubAuthService) AdminLogin(ctx context.Context, req auth.AdminLoginRequest) (*auth.AdminSession, error) {
	return s.admin, s.err
}

func (s *stubAuthService) AdminMe(ctx context.Context, principal *pkgAuth.Principal) (*users.AdminUserDTO, error) {
	if s.admin == nil {
		return nil, s.err
	}
	return s.admin.User, s.err
}

func (s *stubAuthService) CustomerLogin(ctx context.Context, req auth.CustomerLoginRequest) (*auth.CustomerSession, error) {
	return s.customer, s.err
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.CustomerSession, error) {
	s.registered = req
	return s.customer, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, principal *pkgAuth.Principal) error {
	s.loggedOut = principal
	return s.err
}

var testJWTConfig = config.JWTConfig{CookieName: "detailshop_session", CookieSecure: true}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == testJWTConfig.CookieName {
			return c
		}
	}
	return nil
}

func TestAdminAuthLoginSetsCookie(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{admin: &auth.AdminSession{
		Token:     "tok-admin",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      &users.AdminUserDTO{ID: uuid.New(), Username: "owner", Role: enums.AdminRoleAdmin},
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", strings.NewReader(`{"username":"owner","password":"secret"}`))
	rec := httptest.NewRecorder()
	AdminAuthLogin(svc, testJWTConfig, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "tok-admin" {
		t.Fatalf("expected session cookie, got %+v", cookie)
	}
	if !cookie.HttpOnly || !cookie.Secure {
		t.Fatalf("cookie must be HttpOnly and Secure: %+v", cookie)
	}
}

func TestAdminAuthLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", strings.NewReader(`{"username":"owner","password":"wrong"}`))
	rec := httptest.NewRecorder()
	AdminAuthLogin(svc, testJWTConfig, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if sessionCookie(rec) != nil {
		t.Fatalf("no cookie expected on failure")
	}
}

func TestCustomerRegisterValidatesPayload(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/register", strings.NewReader(`{"name":"Ana","phone":"1","email":"ana@example.com","password":"123"}`))
	rec := httptest.NewRecorder()
	CustomerRegister(svc, testJWTConfig, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"password"`) {
		t.Fatalf("expected field detail, got %s", rec.Body.String())
	}
}

func TestCustomerRegisterCreatesSession(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{customer: &auth.CustomerSession{
		Token:     "tok-customer",
		ExpiresAt: time.Now().Add(time.Hour),
		Customer:  &customers.CustomerDTO{ID: uuid.New(), Name: "Ana"},
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/register", strings.NewReader(`{"name":"Ana","phone":"1","email":"ana@example.com","password":"123456"}`))
	rec := httptest.NewRecorder()
	CustomerRegister(svc, testJWTConfig, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.registered.Email != "ana@example.com" {
		t.Fatalf("request not forwarded: %+v", svc.registered)
	}
	if cookie := sessionCookie(rec); cookie == nil || cookie.Value != "tok-customer" {
		t.Fatalf("expected customer cookie, got %+v", cookie)
	}
}

func TestAuthLogoutClearsCookie(t *testing.T) {
	t.Parallel()

	principal := &pkgAuth.Principal{Kind: pkgAuth.PrincipalCustomer, ID: uuid.New(), SessionID: "sid"}
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/logout", nil)
	req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	AuthLogout(svc, testJWTConfig, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.loggedOut != principal {
		t.Fatalf("expected principal passed to logout")
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got %+v", cookie)
	}
}
