package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
)

// AdminUserDTO is the transport shape that omits credentials.
type AdminUserDTO struct {
	ID          uuid.UUID       `json:"id"`
	Username    string          `json:"username"`
	Name        string          `json:"name"`
	Role        enums.AdminRole `json:"role"`
	LastLoginAt *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateInput holds the fields accepted when provisioning an admin user.
type CreateInput struct {
	Username string
	Name     string
	Password string
	Role     enums.AdminRole
}

// CreateResult carries the generated password when none was supplied.
type CreateResult struct {
	User         AdminUserDTO `json:"user"`
	TempPassword string       `json:"tempPassword,omitempty"`
}

func FromModel(u *models.AdminUser) *AdminUserDTO {
	if u == nil {
		return nil
	}
	return &AdminUserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
