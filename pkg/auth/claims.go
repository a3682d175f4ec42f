package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a portal JWT.
type AccessTokenPayload struct {
	ParentID uuid.UUID
	Email    string
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to portal clients.
type AccessTokenClaims struct {
	ParentID uuid.UUID `json:"parent_id"`
	Email    string    `json:"email"`
	jwt.RegisteredClaims
}
