package auth

import (
	"fmt"

	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/google/uuid"
)

// PrincipalKind separates the two account populations.
type PrincipalKind string

const (
	PrincipalAdmin    PrincipalKind = "admin"
	PrincipalCustomer PrincipalKind = "customer"
)

// IsValid reports whether the kind is known.
func (k PrincipalKind) IsValid() bool {
	return k == PrincipalAdmin || k == PrincipalCustomer
}

// Principal is the authenticated caller of a request. Handlers resolve it once
// and pass it to services explicitly.
type Principal struct {
	Kind      PrincipalKind
	ID        uuid.UUID
	Role      enums.AdminRole
	SessionID string
}

// IsAdmin reports whether the principal is a back-office user.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Kind == PrincipalAdmin
}

// IsCustomer reports whether the principal is a storefront customer.
func (p *Principal) IsCustomer() bool {
	return p != nil && p.Kind == PrincipalCustomer
}

// HasRole reports whether an admin principal holds role. The admin role
// implies every other role.
func (p *Principal) HasRole(role enums.AdminRole) bool {
	if !p.IsAdmin() {
		return false
	}
	return p.Role == enums.AdminRoleAdmin || p.Role == role
}

// Subject is the value stored alongside the session to bind it to one account.
func (p *Principal) Subject() string {
	if p == nil {
		return ""
	}
	return Subject(p.Kind, p.ID)
}

// Subject formats kind and id as a session subject.
func Subject(kind PrincipalKind, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", kind, id)
}
