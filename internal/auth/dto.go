package auth

import (
	"time"

	"github.com/angelmondragon/detailshop-backend/internal/customers"
	"github.com/angelmondragon/detailshop-backend/internal/users"
)

// AdminLoginRequest captures back-office credentials.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CustomerLoginRequest captures storefront credentials.
type CustomerLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	Name            string  `json:"name" validate:"required"`
	Phone           string  `json:"phone" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	DeliveryAddress *string `json:"deliveryAddress,omitempty"`
}

// AdminSession is returned after a successful admin login.
type AdminSession struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      *users.AdminUserDTO `json:"user"`
}

// CustomerSession is returned after customer login or registration.
type CustomerSession struct {
	Token     string                 `json:"token"`
	ExpiresAt time.Time              `json:"expiresAt"`
	Customer  *customers.CustomerDTO `json:"customer"`
}
