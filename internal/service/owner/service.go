package owner

import (
	"context"
	"errors"
	"fmt"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

var (
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrInvalidRate        = errors.New("rate must be positive")
)

// Service covers the parking owner's side of the system: profile, balance,
// lot location and the billing policy drivers are charged by.
type Service struct {
	owners   OwnerRepo
	sessions SessionStatusRepo
	log      logger.Logger
}

func NewService(owners OwnerRepo, sessions SessionStatusRepo, log logger.Logger) *Service {
	return &Service{
		owners:   owners,
		sessions: sessions,
		log:      log,
	}
}

func (s *Service) GetProfile(ctx context.Context, email string) (*models.OwnerProfile, error) {
	const op = "ownerService.GetProfile"
	ctx = wrap.WithAction(ctx, "get_owner_profile")
	ctx = wrap.WithUserEmail(ctx, email)

	profile, err := s.owners.GetProfile(ctx, email)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return profile, nil
}

func (s *Service) GetBalance(ctx context.Context, email string) (types.Amount, error) {
	const op = "ownerService.GetBalance"
	ctx = wrap.WithAction(ctx, "get_owner_balance")
	ctx = wrap.WithUserEmail(ctx, email)

	balance, err := s.owners.GetBalance(ctx, email)
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return balance, nil
}

func (s *Service) GetLocation(ctx context.Context, email string) (models.Location, error) {
	const op = "ownerService.GetLocation"
	ctx = wrap.WithAction(ctx, "get_owner_location")
	ctx = wrap.WithUserEmail(ctx, email)

	loc, err := s.owners.GetLocation(ctx, email)
	if err != nil {
		return models.Location{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return loc, nil
}

func (s *Service) SetLocation(ctx context.Context, email string, lat, lon float64) error {
	const op = "ownerService.SetLocation"
	ctx = wrap.WithAction(ctx, "set_owner_location")
	ctx = wrap.WithUserEmail(ctx, email)

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrInvalidCoordinates))
	}
	if err := s.owners.SetLocation(ctx, email, lat, lon); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info(ctx, "owner location updated", "lat", lat, "lon", lon)
	return nil
}

func (s *Service) GetPaymentPolicy(ctx context.Context, email string) (*models.PaymentPolicy, error) {
	const op = "ownerService.GetPaymentPolicy"
	ctx = wrap.WithAction(ctx, "get_payment_policy")
	ctx = wrap.WithUserEmail(ctx, email)

	policy, err := s.owners.GetPaymentPolicy(ctx, email)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return policy, nil
}

func (s *Service) SetPaymentPolicy(ctx context.Context, email string, rate types.Amount) error {
	const op = "ownerService.SetPaymentPolicy"
	ctx = wrap.WithAction(ctx, "set_payment_policy")
	ctx = wrap.WithUserEmail(ctx, email)

	if rate.IsNegative() || rate.IsZero() {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrInvalidRate))
	}
	if err := s.owners.SetPaymentPolicy(ctx, email, rate); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	s.log.Info(ctx, "payment policy updated", "rate_per_minute", rate.String())
	return nil
}

// VerifyPayment tells the owner whether a session has been settled.
func (s *Service) VerifyPayment(ctx context.Context, sessionID uuid.UUID) (types.PaymentStatus, error) {
	const op = "ownerService.VerifyPayment"
	ctx = wrap.WithAction(ctx, "verify_payment")
	ctx = wrap.WithSessionID(ctx, sessionID.String())

	status, err := s.sessions.GetPaymentStatus(ctx, sessionID)
	if err != nil {
		return "", wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	return status, nil
}
