package parking

import (
	"context"
	"time"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

// SessionRepo is the durable session store. Every method joins the ambient
// context transaction and never commits on its own.
type SessionRepo interface {
	FindActiveByDriver(ctx context.Context, driverEmail string) (*models.ParkingSession, error)
	Insert(ctx context.Context, s *models.ParkingSession) error
	MarkStopped(ctx context.Context, sessionID uuid.UUID, driverEmail, ownerEmail string, now time.Time) (*models.ParkingSession, error)
	MarkPaid(ctx context.Context, sessionID uuid.UUID) (bool, error)
	FindWithOwnerPolicy(ctx context.Context, sessionID uuid.UUID) (*models.SessionWithPolicy, error)
}

// DriverLedger is the paying side of a settlement.
type DriverLedger interface {
	GetBalance(ctx context.Context, email string) (types.Amount, error)
	Debit(ctx context.Context, email string, amount types.Amount) error
}

// OwnerLedger is the receiving side of a settlement plus the owner lookups
// the lifecycle needs.
type OwnerLedger interface {
	GetLocation(ctx context.Context, email string) (models.Location, error)
	GetPaymentPolicy(ctx context.Context, email string) (*models.PaymentPolicy, error)
	Credit(ctx context.Context, email string, amount types.Amount) error
}

// EventPublisher emits lifecycle events after the owning transaction
// commits. Implementations may fail; the service only logs it.
type EventPublisher interface {
	PublishSessionStarted(ctx context.Context, msg models.SessionStartedMessage) error
	PublishSessionStopped(ctx context.Context, msg models.SessionStoppedMessage) error
	PublishSessionPaid(ctx context.Context, msg models.SessionPaidMessage) error
}
