package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arman-qz/parking-system/internal/domain/types"
)

type AccessToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CustomClaims is the decoded form of an access token.
type CustomClaims struct {
	Email string
	Role  types.AccountRole
	jwt.RegisteredClaims
}
