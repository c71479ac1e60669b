package owner

import (
	"context"
	"errors"
	"testing"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/logger"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

type fakeOwnerRepo struct {
	profiles  map[string]*models.OwnerProfile
	locations map[string]models.Location
	policies  map[string]types.Amount
}

func newFakeOwnerRepo() *fakeOwnerRepo {
	return &fakeOwnerRepo{
		profiles:  make(map[string]*models.OwnerProfile),
		locations: make(map[string]models.Location),
		policies:  make(map[string]types.Amount),
	}
}

func (f *fakeOwnerRepo) GetProfile(_ context.Context, email string) (*models.OwnerProfile, error) {
	p, ok := f.profiles[email]
	if !ok {
		return nil, types.ErrOwnerNotFound
	}
	return p, nil
}

func (f *fakeOwnerRepo) GetBalance(_ context.Context, email string) (types.Amount, error) {
	if _, ok := f.profiles[email]; !ok {
		return 0, types.ErrOwnerNotFound
	}
	return f.profiles[email].Balance, nil
}

func (f *fakeOwnerRepo) GetLocation(_ context.Context, email string) (models.Location, error) {
	loc, ok := f.locations[email]
	if !ok {
		return models.Location{}, types.ErrOwnerNotFound
	}
	return loc, nil
}

func (f *fakeOwnerRepo) SetLocation(_ context.Context, email string, lat, lon float64) error {
	if _, ok := f.profiles[email]; !ok {
		return types.ErrOwnerNotFound
	}
	f.locations[email] = models.Location{Latitude: lat, Longitude: lon}
	return nil
}

func (f *fakeOwnerRepo) GetPaymentPolicy(_ context.Context, email string) (*models.PaymentPolicy, error) {
	rate, ok := f.policies[email]
	if !ok {
		return nil, types.ErrNoPaymentPolicy
	}
	return &models.PaymentPolicy{RatePerMinute: rate}, nil
}

func (f *fakeOwnerRepo) SetPaymentPolicy(_ context.Context, email string, rate types.Amount) error {
	if _, ok := f.profiles[email]; !ok {
		return types.ErrOwnerNotFound
	}
	f.policies[email] = rate
	return nil
}

type fakeStatusRepo struct {
	statuses map[uuid.UUID]types.PaymentStatus
}

func (f *fakeStatusRepo) GetPaymentStatus(_ context.Context, sessionID uuid.UUID) (types.PaymentStatus, error) {
	st, ok := f.statuses[sessionID]
	if !ok {
		return "", types.ErrSessionNotFound
	}
	return st, nil
}

const testEmail = "owner@test.com"

func newTestService(t *testing.T) (*Service, *fakeOwnerRepo, *fakeStatusRepo) {
	t.Helper()

	owners := newFakeOwnerRepo()
	owners.profiles[testEmail] = &models.OwnerProfile{Email: testEmail, Balance: types.AmountFromMajor(50)}
	sessions := &fakeStatusRepo{statuses: make(map[uuid.UUID]types.PaymentStatus)}
	svc := NewService(owners, sessions, logger.InitLogger("owner-test", logger.LevelError))
	return svc, owners, sessions
}

func TestSetLocation(t *testing.T) {
	svc, owners, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetLocation(ctx, testEmail, 43.238949, 76.889709); err != nil {
		t.Fatalf("set location: %v", err)
	}
	loc, err := svc.GetLocation(ctx, testEmail)
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if loc != owners.locations[testEmail] {
		t.Fatalf("location mismatch: %+v", loc)
	}
}

func TestSetLocation_OutOfRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -181}}
	for _, c := range cases {
		if err := svc.SetLocation(ctx, testEmail, c[0], c[1]); !errors.Is(err, ErrInvalidCoordinates) {
			t.Fatalf("(%v, %v): expected ErrInvalidCoordinates, got %v", c[0], c[1], err)
		}
	}
}

func TestSetPaymentPolicy(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	rate := types.AmountFromMajor(2)
	if err := svc.SetPaymentPolicy(ctx, testEmail, rate); err != nil {
		t.Fatalf("set policy: %v", err)
	}
	policy, err := svc.GetPaymentPolicy(ctx, testEmail)
	if err != nil {
		t.Fatalf("get policy: %v", err)
	}
	if policy.RatePerMinute != rate {
		t.Fatalf("rate mismatch: got %s want %s", policy.RatePerMinute, rate)
	}
}

func TestSetPaymentPolicy_RejectsNonPositive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SetPaymentPolicy(ctx, testEmail, 0); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("zero rate: expected ErrInvalidRate, got %v", err)
	}
	if err := svc.SetPaymentPolicy(ctx, testEmail, types.Amount(-100)); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("negative rate: expected ErrInvalidRate, got %v", err)
	}
}

func TestGetPaymentPolicy_Unset(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.GetPaymentPolicy(context.Background(), testEmail); !errors.Is(err, types.ErrNoPaymentPolicy) {
		t.Fatalf("expected ErrNoPaymentPolicy, got %v", err)
	}
}

func TestVerifyPayment(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	id, err := uuid.New()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	sessions.statuses[id] = types.PaymentPaid

	status, err := svc.VerifyPayment(ctx, id)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if status != types.PaymentPaid {
		t.Fatalf("expected paid, got %s", status)
	}

	other, err := uuid.New()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	if _, err := svc.VerifyPayment(ctx, other); !errors.Is(err, types.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestGetProfile_Unknown(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.GetProfile(context.Background(), "ghost@test.com"); !errors.Is(err, types.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}
