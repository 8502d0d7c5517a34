package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/detailshop-backend/pkg/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/security"
	"github.com/google/uuid"
)

const tempPasswordLength = 12

type passwordHasher interface {
	Hash(password string) (string, error)
}

// Service manages back-office accounts.
type Service interface {
	List(ctx context.Context) ([]AdminUserDTO, error)
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error
}

type service struct {
	repo   *Repository
	hasher passwordHasher
}

func NewService(repo *Repository, hasher passwordHasher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin users repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	return &service{repo: repo, hasher: hasher}, nil
}

func (s *service) List(ctx context.Context) ([]AdminUserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list admin users")
	}
	out := make([]AdminUserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	username := strings.TrimSpace(input.Username)
	name := strings.TrimSpace(input.Name)
	if username == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and name are required")
	}
	role := input.Role
	if role == "" {
		role = enums.AdminRoleStaff
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	password := input.Password
	temp := ""
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		password = generated
		temp = generated
	}
	credential, err := s.hasher.Hash(password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, &models.AdminUser{
		Username: username,
		Name:     name,
		Password: credential,
		Role:     role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin user")
	}
	return &CreateResult{User: *FromModel(user), TempPassword: temp}, nil
}

func (s *service) Delete(ctx context.Context, principal *auth.Principal, id uuid.UUID) error {
	if principal.IsAdmin() && principal.ID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete admin user")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "admin user not found")
	}
	return nil
}
