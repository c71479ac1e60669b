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

type DriverRepo struct {
	db *pgxpool.Pool
}

func NewDriverRepo(db *pgxpool.Pool) *DriverRepo {
	return &DriverRepo{db: db}
}

func (r *DriverRepo) Create(ctx context.Context, email, passwordHash string) error {
	const op = "DriverRepo.Create"
	query := `
		INSERT INTO drivers (email, password_hash)
		VALUES ($1, $2);`

	if _, err := TxorDB(ctx, r.db).Exec(ctx, query, email, passwordHash); err != nil {
		if postgres.IsUniqueViolation(err) {
			return types.ErrAccountExists
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *DriverRepo) GetByEmail(ctx context.Context, email string) (*models.Driver, error) {
	const op = "DriverRepo.GetByEmail"
	query := `
		SELECT email, password_hash, balance, created_at
		FROM drivers
		WHERE email = $1;`

	var (
		driver models.Driver
		hash   string
	)
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, email).Scan(
		&driver.Email, &hash, &driver.Balance, &driver.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrDriverNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	driver.SetPasswordHash(hash)

	return &driver, nil
}

func (r *DriverRepo) GetBalance(ctx context.Context, email string) (types.Amount, error) {
	const op = "DriverRepo.GetBalance"
	query := `SELECT balance FROM drivers WHERE email = $1;`

	var balance types.Amount
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, email).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, types.ErrDriverNotFound
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return balance, nil
}

// Debit subtracts amount from the driver's balance. It joins the ambient
// transaction and never commits on its own; a missing account is a plain
// error so the surrounding transaction rolls back.
func (r *DriverRepo) Debit(ctx context.Context, email string, amount types.Amount) error {
	const op = "DriverRepo.Debit"
	query := `
		UPDATE drivers
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

// Credit adds amount to the driver's balance under the same transactional
// rules as Debit.
func (r *DriverRepo) Credit(ctx context.Context, email string, amount types.Amount) error {
	const op = "DriverRepo.Credit"
	query := `
		UPDATE drivers
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
