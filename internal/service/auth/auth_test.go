package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
)

type fakeDriverRepo struct {
	accounts map[string]*models.Driver
}

func (f *fakeDriverRepo) Create(_ context.Context, email, passwordHash string) error {
	if _, ok := f.accounts[email]; ok {
		return types.ErrAccountExists
	}
	d := &models.Driver{Email: email}
	d.SetPasswordHash(passwordHash)
	f.accounts[email] = d
	return nil
}

func (f *fakeDriverRepo) GetByEmail(_ context.Context, email string) (*models.Driver, error) {
	d, ok := f.accounts[email]
	if !ok {
		return nil, types.ErrDriverNotFound
	}
	return d, nil
}

type fakeOwnerRepo struct {
	accounts map[string]*models.ParkingOwner
}

func (f *fakeOwnerRepo) Create(_ context.Context, email, passwordHash string, location *models.Location) error {
	if _, ok := f.accounts[email]; ok {
		return types.ErrAccountExists
	}
	o := &models.ParkingOwner{Email: email, Location: location}
	o.SetPasswordHash(passwordHash)
	f.accounts[email] = o
	return nil
}

func (f *fakeOwnerRepo) GetByEmail(_ context.Context, email string) (*models.ParkingOwner, error) {
	o, ok := f.accounts[email]
	if !ok {
		return nil, types.ErrOwnerNotFound
	}
	return o, nil
}

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()

	drivers := &fakeDriverRepo{accounts: make(map[string]*models.Driver)}
	owners := &fakeOwnerRepo{accounts: make(map[string]*models.ParkingOwner)}
	tokens := NewTokenService("test-secret", time.Hour)
	return NewAuthService(drivers, owners, tokens, logger.InitLogger("auth-test", logger.LevelError))
}

func TestRegisterAndLogin_Driver(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	if err := svc.RegisterDriver(ctx, "driver@test.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Login(ctx, "driver@test.com", "secret123", types.DriverRole)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.Token == "" {
		t.Fatalf("expected a signed token")
	}
	if !token.ExpiresAt.After(time.Now()) {
		t.Fatalf("token must expire in the future")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	if err := svc.RegisterDriver(ctx, "driver@test.com", "secret123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := svc.RegisterDriver(ctx, "driver@test.com", "other"); !errors.Is(err, ErrNotUniqueEmail) {
		t.Fatalf("expected ErrNotUniqueEmail, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	if err := svc.RegisterOwner(ctx, "owner@test.com", "secret123", nil); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(ctx, "owner@test.com", "wrong", types.OwnerRole); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownAccount(t *testing.T) {
	svc := newTestAuth(t)

	if _, err := svc.Login(context.Background(), "ghost@test.com", "secret123", types.DriverRole); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_RoleSeparation(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	if err := svc.RegisterDriver(ctx, "driver@test.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	// A driver account must not authenticate as an owner.
	if _, err := svc.Login(ctx, "driver@test.com", "secret123", types.OwnerRole); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	issued, err := tokens.Generate("driver@test.com", types.DriverRole.String())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := tokens.Validate(issued.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Email != "driver@test.com" {
		t.Fatalf("email claim mismatch: %s", claims.Email)
	}
	if claims.Role != types.DriverRole {
		t.Fatalf("role claim mismatch: %s", claims.Role)
	}
}

func TestTokenService_RejectsForeignSecret(t *testing.T) {
	issued, err := NewTokenService("secret-a", time.Hour).Generate("driver@test.com", types.DriverRole.String())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewTokenService("secret-b", time.Hour).Validate(issued.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	if _, err := tokens.Validate("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
