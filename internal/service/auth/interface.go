package auth

import (
	"context"

	"github.com/arman-qz/parking-system/internal/domain/models"
)

type DriverRepo interface {
	Create(ctx context.Context, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*models.Driver, error)
}

type OwnerRepo interface {
	Create(ctx context.Context, email, passwordHash string, location *models.Location) error
	GetByEmail(ctx context.Context, email string) (*models.ParkingOwner, error)
}

type TokenProvider interface {
	Generate(email string, role string) (*models.AccessToken, error)
	Validate(token string) (*models.CustomClaims, error)
}
