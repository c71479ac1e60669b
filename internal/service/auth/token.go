package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

// TokenService issues and validates HS256 access tokens.
type TokenService struct {
	secret    string
	accessTTL time.Duration
}

func NewTokenService(secret string, accessTTL time.Duration) *TokenService {
	return &TokenService{
		secret:    secret,
		accessTTL: accessTTL,
	}
}

func (s *TokenService) Generate(email string, role string) (*models.AccessToken, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.accessTTL)

	tokenID, err := uuid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token id: %w", err)
	}

	claims := jwt.MapClaims{
		"jti":   tokenID.String(),
		"email": email,
		"role":  role,
		"iat":   issuedAt.Unix(),
		"exp":   expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.AccessToken{
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate parses and checks the token, returning its claims.
func (s *TokenService) Validate(token string) (*models.CustomClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, jwt.MapClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return []byte(s.secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	email, _ := mc["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("invalid or missing 'email' in token claims")
	}

	role, _ := mc["role"].(string)
	if role != types.DriverRole.String() && role != types.OwnerRole.String() {
		return nil, ErrUnknownRole
	}

	expFloat, ok := mc["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid or missing 'exp' in token claims")
	}
	expTime := time.Unix(int64(expFloat), 0)
	if time.Now().UTC().After(expTime) {
		return nil, ErrExpToken
	}

	return &models.CustomClaims{
		Email: email,
		Role:  types.AccountRole(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expTime),
		},
	}, nil
}
