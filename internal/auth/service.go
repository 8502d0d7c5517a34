package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/detailshop-backend/internal/customers"
	"github.com/angelmondragon/detailshop-backend/internal/users"
	pkgAuth "github.com/angelmondragon/detailshop-backend/pkg/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	AdminLogin(ctx context.Context, req AdminLoginRequest) (*AdminSession, error)
	AdminMe(ctx context.Context, principal *pkgAuth.Principal) (*users.AdminUserDTO, error)
	CustomerLogin(ctx context.Context, req CustomerLoginRequest) (*CustomerSession, error)
	Register(ctx context.Context, req RegisterRequest) (*CustomerSession, error)
	Logout(ctx context.Context, principal *pkgAuth.Principal) error
}

type adminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, credential string) error
}

type customerRepository interface {
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindRegisteredByEmail(ctx context.Context, email string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, credential string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, cred security.Credential) bool
}

type sessionManager interface {
	Start(ctx context.Context, subject string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

type service struct {
	admins    adminRepository
	customers customerRepository
	hasher    passwordHasher
	session   sessionManager
	jwtCfg    config.JWTConfig
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	AdminRepo      adminRepository
	CustomerRepo   customerRepository
	Hasher         passwordHasher
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
	Now            func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.AdminRepo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if params.CustomerRepo == nil {
		return nil, fmt.Errorf("customer repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		admins:    params.AdminRepo,
		customers: params.CustomerRepo,
		hasher:    params.Hasher,
		session:   params.SessionManager,
		jwtCfg:    params.JWTConfig,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) AdminLogin(ctx context.Context, req AdminLoginRequest) (*AdminSession, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var user *models.AdminUser
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.admins.FindByUsername(ctx, username)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin user")
	}
	if !user.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"principal_kind": string(pkgAuth.PrincipalAdmin), "user_id": user.ID.String()})
	if !s.verify(ctx, req.Password, user.Password, func(ctx context.Context, credential string) error {
		return s.admins.UpdatePassword(ctx, user.ID, credential)
	}) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := s.now()
	if err := s.admins.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	token, expiresAt, err := s.openSession(ctx, now, pkgAuth.SessionTokenPayload{
		Kind:      pkgAuth.PrincipalAdmin,
		SubjectID: user.ID,
		Role:      user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &AdminSession{Token: token, ExpiresAt: expiresAt, User: users.FromModel(user)}, nil
}

func (s *service) AdminMe(ctx context.Context, principal *pkgAuth.Principal) (*users.AdminUserDTO, error) {
	if !principal.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.admins.FindByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load admin user")
	}
	return users.FromModel(user), nil
}

func (s *service) CustomerLogin(ctx context.Context, req CustomerLoginRequest) (*CustomerSession, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var customer *models.Customer
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		customer, err = s.customers.FindRegisteredByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}
	if customer.Password == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"principal_kind": string(pkgAuth.PrincipalCustomer), "user_id": customer.ID.String()})
	if !s.verify(ctx, req.Password, *customer.Password, func(ctx context.Context, credential string) error {
		return s.customers.UpdatePassword(ctx, customer.ID, credential)
	}) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.customerSession(ctx, customer)
}

func (s *service) Logout(ctx context.Context, principal *pkgAuth.Principal) error {
	if principal == nil || principal.SessionID == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, principal.SessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// verify checks password against stored and, on success, upgrades a legacy
// credential. A failed upgrade is logged and does not fail the login.
func (s *service) verify(ctx context.Context, password, stored string, persist func(context.Context, string) error) bool {
	cred := security.ParseCredential(stored)
	if !s.hasher.Verify(password, cred) {
		return false
	}
	scheme := cred.Scheme()
	if scheme == security.SchemePlaintext {
		s.logg.Warn(ctx, "auth.plaintext_credential")
	}
	if !security.NeedsRehash(cred) {
		return true
	}

	upgraded, err := s.hasher.Hash(password)
	if err != nil {
		s.logg.Error(ctx, "auth.rehash_failed", err)
		return true
	}
	if err := persist(ctx, upgraded); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "scheme", scheme.String()), "auth.rehash_failed", err)
		return true
	}
	s.logg.Info(s.logg.WithField(ctx, "scheme", scheme.String()), "auth.credential_rehashed")
	return true
}

func (s *service) customerSession(ctx context.Context, customer *models.Customer) (*CustomerSession, error) {
	token, expiresAt, err := s.openSession(ctx, s.now(), pkgAuth.SessionTokenPayload{
		Kind:      pkgAuth.PrincipalCustomer,
		SubjectID: customer.ID,
	})
	if err != nil {
		return nil, err
	}
	return &CustomerSession{Token: token, ExpiresAt: expiresAt, Customer: customers.FromModel(customer)}, nil
}

func (s *service) openSession(ctx context.Context, now time.Time, payload pkgAuth.SessionTokenPayload) (string, time.Time, error) {
	sessionID, err := s.session.Start(ctx, pkgAuth.Subject(payload.Kind, payload.SubjectID))
	if err != nil {
		return "", time.Time{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start session")
	}
	payload.SessionID = sessionID
	token, err := pkgAuth.MintSessionToken(s.jwtCfg, now, payload)
	if err != nil {
		return "", time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, now.Add(s.jwtCfg.SessionTTL()), nil
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
