package owner

import (
	"context"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

type OwnerRepo interface {
	GetProfile(ctx context.Context, email string) (*models.OwnerProfile, error)
	GetBalance(ctx context.Context, email string) (types.Amount, error)
	GetLocation(ctx context.Context, email string) (models.Location, error)
	SetLocation(ctx context.Context, email string, lat, lon float64) error
	GetPaymentPolicy(ctx context.Context, email string) (*models.PaymentPolicy, error)
	SetPaymentPolicy(ctx context.Context, email string, rate types.Amount) error
}

type SessionStatusRepo interface {
	GetPaymentStatus(ctx context.Context, sessionID uuid.UUID) (types.PaymentStatus, error)
}
