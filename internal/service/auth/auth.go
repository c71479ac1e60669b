package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	"github.com/arman-qz/parking-system/pkg/passhash"
)

// AuthService registers and authenticates drivers and parking owners.
// Each role has its own account table; the issued token carries the role
// so the HTTP layer can route authorization.
type AuthService struct {
	drivers      DriverRepo
	owners       OwnerRepo
	tokenService TokenProvider
	log          logger.Logger
}

func NewAuthService(drivers DriverRepo, owners OwnerRepo, tokens TokenProvider, log logger.Logger) *AuthService {
	return &AuthService{
		drivers:      drivers,
		owners:       owners,
		tokenService: tokens,
		log:          log,
	}
}

// RegisterDriver creates a driver account with a hashed password.
func (s *AuthService) RegisterDriver(ctx context.Context, email, password string) error {
	const op = "authService.RegisterDriver"
	ctx = wrap.WithAction(ctx, "driver_register")
	ctx = wrap.WithUserEmail(ctx, email)

	hash, err := passhash.HashPassword(password)
	if err != nil {
		s.log.Error(ctx, "failed to hash password", err)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrUnexpected))
	}

	if err := s.drivers.Create(ctx, email, hash); err != nil {
		if errors.Is(err, types.ErrAccountExists) {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrNotUniqueEmail))
		}
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.log.Info(ctx, "driver registered")
	return nil
}

// RegisterOwner creates a parking owner account, optionally with the lot
// location known at signup.
func (s *AuthService) RegisterOwner(ctx context.Context, email, password string, location *models.Location) error {
	const op = "authService.RegisterOwner"
	ctx = wrap.WithAction(ctx, "owner_register")
	ctx = wrap.WithUserEmail(ctx, email)

	hash, err := passhash.HashPassword(password)
	if err != nil {
		s.log.Error(ctx, "failed to hash password", err)
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrUnexpected))
	}

	if err := s.owners.Create(ctx, email, hash, location); err != nil {
		if errors.Is(err, types.ErrAccountExists) {
			return wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrNotUniqueEmail))
		}
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.log.Info(ctx, "parking owner registered")
	return nil
}

// Login checks the credentials against the account table for the given
// role and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string, role types.AccountRole) (*models.AccessToken, error) {
	const op = "authService.Login"
	ctx = wrap.WithAction(ctx, "login")
	ctx = wrap.WithUserEmail(ctx, email)

	var hash string
	switch role {
	case types.DriverRole:
		driver, err := s.drivers.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, types.ErrDriverNotFound) {
				return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrInvalidCredentials))
			}
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		hash = driver.PasswordHash()
	case types.OwnerRole:
		owner, err := s.owners.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, types.ErrOwnerNotFound) {
				return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrInvalidCredentials))
			}
			return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
		}
		hash = owner.PasswordHash()
	default:
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrUnknownRole))
	}

	if ok, err := passhash.VerifyPassword(password, hash); err != nil || !ok {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrInvalidCredentials))
	}

	token, err := s.tokenService.Generate(email, role.String())
	if err != nil {
		s.log.Error(ctx, "failed to generate access token", err)
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, ErrTokenGenerateFail))
	}

	s.log.Info(ctx, "login succeeded", "role", role.String())
	return token, nil
}
