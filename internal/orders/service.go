package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/detailshop-backend/pkg/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes order reads and the manual fulfillment transitions.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error)
	ListForCustomer(ctx context.Context, principal *auth.Principal, params pagination.Params) (*ListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
}

// Manual orders settle outside the gateway; staff close them by hand.
var manualTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusCompleted: {enums.OrderStatusPending},
	enums.OrderStatusCancelled: {enums.OrderStatusPending},
}

type service struct {
	repo Repository
}

// NewService builds the order service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	var order *models.Order
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.FindDetail(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pagination.WrapListError(err, "list orders")
	}
	out := &ListResult{Orders: make([]OrderDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Orders = append(out.Orders, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListForCustomer(ctx context.Context, principal *auth.Principal, params pagination.Params) (*ListResult, error) {
	if !principal.IsCustomer() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer session required")
	}
	customerID := principal.ID
	return s.List(ctx, params, ListFilters{CustomerID: &customerID})
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	from, ok := manualTransitions[status]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be completed or cancelled")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.PaymentMethod.IsGateway() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "gateway orders follow the payment provider").
			WithDetails(map[string]any{"status": current.Status})
	}

	updated, err := s.repo.UpdateStatus(ctx, id, from, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", current.Status, status)).
			WithDetails(map[string]any{"status": current.Status})
	}
	return s.Get(ctx, id)
}
