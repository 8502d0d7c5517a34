package auth

import (
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTokenPayload captures the data available when minting a session token.
type SessionTokenPayload struct {
	Kind      PrincipalKind
	SubjectID uuid.UUID
	Role      enums.AdminRole
	SessionID string
}

// SessionTokenClaims represents the typed JWT handed to browsers.
type SessionTokenClaims struct {
	Kind      PrincipalKind   `json:"kind"`
	SubjectID uuid.UUID       `json:"sid"`
	Role      enums.AdminRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts validated claims into the request principal.
func (c *SessionTokenClaims) Principal() *Principal {
	if c == nil {
		return nil
	}
	return &Principal{
		Kind:      c.Kind,
		ID:        c.SubjectID,
		Role:      c.Role,
		SessionID: c.ID,
	}
}
