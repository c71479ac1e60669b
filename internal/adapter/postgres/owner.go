package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/postgres"
)

type OwnerRepo struct {
	db *pgxpool.Pool
}

func NewOwnerRepo(db *pgxpool.Pool) *OwnerRepo {
	return &OwnerRepo{db: db}
}

func (r *OwnerRepo) Create(ctx context.Context, email, passwordHash string, location *models.Location) error {
	const op = "OwnerRepo.Create"
	query := `
		INSERT INTO parking_owners (email, password_hash, lat, lon)
		VALUES ($1, $2, $3, $4);`

	var lat, lon *float64
	if location != nil {
		lat = &location.Latitude
		lon = &location.Longitude
	}

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, email, passwordHash, lat, lon); err != nil {
		if postgres.IsUniqueViolation(err) {
			return types.ErrAccountExists
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *OwnerRepo) GetByEmail(ctx context.Context, email string) (*models.ParkingOwner, error) {
	const op = "OwnerRepo.GetByEmail"
	query := `
		SELECT email, password_hash, lat, lon, balance, payment_policy, created_at
		FROM parking_owners
		WHERE email = $1;`

	var (
		owner models.ParkingOwner
		hash  string
		lat   *float64
		lon   *float64
		rate  *types.Amount
	)
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, email).Scan(
		&owner.Email, &hash, &lat, &lon, &owner.Balance, &rate, &owner.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	owner.SetPasswordHash(hash)
	if lat != nil && lon != nil {
		owner.Location = &models.Location{Latitude: *lat, Longitude: *lon}
	}
	if rate != nil {
		owner.Policy = &models.PaymentPolicy{RatePerMinute: *rate}
	}

	return &owner, nil
}

// GetLocation returns the owner's parking-spot coordinates. Owners without a
// stored location yield a zero Location, mirroring the nullable columns.
func (r *OwnerRepo) GetLocation(ctx context.Context, email string) (models.Location, error) {
	const op = "OwnerRepo.GetLocation"
	query := `SELECT lat, lon FROM parking_owners WHERE email = $1;`

	var lat, lon *float64
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, email).Scan(&lat, &lon); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Location{}, types.ErrOwnerNotFound
		}
		return models.Location{}, fmt.Errorf("%s: %w", op, err)
	}

	var loc models.Location
	if lat != nil && lon != nil {
		loc = models.Location{Latitude: *lat, Longitude: *lon}
	}
	return loc, nil
}

func (r *OwnerRepo) SetLocation(ctx context.Context, email string, lat, lon float64) error {
	const op = "OwnerRepo.SetLocation"
	query := `
		UPDATE parking_owners
		SET lat = $2, lon = $3
		WHERE email = $1;`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, email, lat, lon)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrOwnerNotFound
	}

	return nil
}

func (r *OwnerRepo) GetPaymentPolicy(ctx context.Context, email string) (*models.PaymentPolicy, error) {
	const op = "OwnerRepo.GetPaymentPolicy"
	query := `SELECT payment_policy FROM parking_owners WHERE email = $1;`

	var rate *types.Amount
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, email).Scan(&rate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rate == nil {
		return nil, types.ErrNoPaymentPolicy
	}

	return &models.PaymentPolicy{RatePerMinute: *rate}, nil
}

// SetPaymentPolicy stores the per-minute rate. The caller normalizes the
// rate to whole minor units before it gets here.
func (r *OwnerRepo) SetPaymentPolicy(ctx context.Context, email string, rate types.Amount) error {
	const op = "OwnerRepo.SetPaymentPolicy"
	query := `
		UPDATE parking_owners
		SET payment_policy = $2
		WHERE email = $1;`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, email, rate)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrOwnerNotFound
	}

	return nil
}

func (r *OwnerRepo) GetBalance(ctx context.Context, email string) (types.Amount, error) {
	const op = "OwnerRepo.GetBalance"
	query := `SELECT balance FROM parking_owners WHERE email = $1;`

	var balance types.Amount
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, email).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, types.ErrOwnerNotFound
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return balance, nil
}

func (r *OwnerRepo) Debit(ctx context.Context, email string, amount types.Amount) error {
	const op = "OwnerRepo.Debit"
	query := `
		UPDATE parking_owners
		SET balance = balance - $2
		WHERE email = $1;`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, email, amount)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: no account for %s", op, email)
	}

	return nil
}

func (r *OwnerRepo) Credit(ctx context.Context, email string, amount types.Amount) error {
	const op = "OwnerRepo.Credit"
	query := `
		UPDATE parking_owners
		SET balance = balance + $2
		WHERE email = $1;`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, email, amount)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: no account for %s", op, email)
	}

	return nil
}

// GetProfile returns the owner read model without credentials.
func (r *OwnerRepo) GetProfile(ctx context.Context, email string) (*models.OwnerProfile, error) {
	const op = "OwnerRepo.GetProfile"

	owner, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.OwnerProfile{
		Email:    owner.Email,
		Location: owner.Location,
		Balance:  owner.Balance,
		Policy:   owner.Policy,
	}, nil
}
