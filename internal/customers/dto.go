package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
)

// CustomerDTO is the transport shape that omits credentials.
type CustomerDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Email           *string   `json:"email,omitempty"`
	DeliveryAddress *string   `json:"deliveryAddress,omitempty"`
	IsRegistered    bool      `json:"isRegistered"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ListResult is one page of customers.
type ListResult struct {
	Customers  []CustomerDTO `json:"customers"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// CreateInput holds the admin payload for a new customer.
type CreateInput struct {
	Name            string
	Phone           string
	Email           *string
	DeliveryAddress *string
}

// UpdateInput holds optional customer mutations.
type UpdateInput struct {
	Name            *string
	Phone           *string
	Email           *string
	DeliveryAddress *string
}

func FromModel(c *models.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		ID:              c.ID,
		Name:            c.Name,
		Phone:           c.Phone,
		Email:           c.Email,
		DeliveryAddress: c.DeliveryAddress,
		IsRegistered:    c.IsRegistered,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
