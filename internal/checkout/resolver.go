package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"gorm.io/gorm"
)

type customerStore interface {
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}

// ContactInput is the buyer contact block submitted with a cart.
type ContactInput struct {
	Name            string
	Phone           string
	Email           *string
	DeliveryAddress *string
}

// resolveCustomer finds the buyer by phone, then by email, and creates an
// unregistered customer when neither matches. A found customer gets the
// submitted name, a non-empty address and, when missing, the email.
func resolveCustomer(ctx context.Context, store customerStore, contact ContactInput) (*models.Customer, error) {
	email := trimmed(contact.Email)
	address := trimmed(contact.DeliveryAddress)

	customer, err := lookup(ctx, func(ctx context.Context) (*models.Customer, error) {
		return store.FindByPhone(ctx, contact.Phone)
	})
	if err != nil {
		return nil, err
	}
	if customer == nil && email != nil {
		customer, err = lookup(ctx, func(ctx context.Context) (*models.Customer, error) {
			return store.FindByEmail(ctx, *email)
		})
		if err != nil {
			return nil, err
		}
	}

	if customer == nil {
		return store.Create(ctx, &models.Customer{
			Name:            contact.Name,
			Phone:           contact.Phone,
			Email:           email,
			DeliveryAddress: address,
		})
	}

	customer.Name = contact.Name
	if address != nil {
		customer.DeliveryAddress = address
	}
	if customer.Email == nil && email != nil {
		customer.Email = email
	}
	return store.Update(ctx, customer)
}

func lookup(ctx context.Context, find func(ctx context.Context) (*models.Customer, error)) (*models.Customer, error) {
	var customer *models.Customer
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		customer, err = find(ctx)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return customer, err
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
