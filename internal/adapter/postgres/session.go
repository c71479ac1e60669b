package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/postgres"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

// SessionRepo persists parking sessions. Rows are append-only: end_time and
// payment_status each transition exactly once and nothing is ever deleted.
// The partial unique index on (driver_email) WHERE end_time IS NULL backs
// the one-active-session-per-driver invariant at the storage level.
type SessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepo(db *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{db: db}
}

// FindActiveByDriver returns the driver's active session, or nil when the
// driver has none.
func (r *SessionRepo) FindActiveByDriver(ctx context.Context, driverEmail string) (*models.ParkingSession, error) {
	const op = "SessionRepo.FindActiveByDriver"
	query := `
		SELECT session_id, driver_email, parking_owner_email, start_time, end_time, payment_status
		FROM sessions
		WHERE driver_email = $1 AND end_time IS NULL;`

	var s models.ParkingSession
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, driverEmail).Scan(
		&s.ID, &s.DriverEmail, &s.OwnerEmail, &s.StartTime, &s.EndTime, &s.PaymentStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &s, nil
}

// Insert creates a new active session row. A concurrent start that loses the
// race on the active-session index surfaces as ErrDuplicateSession.
func (r *SessionRepo) Insert(ctx context.Context, s *models.ParkingSession) error {
	const op = "SessionRepo.Insert"
	query := `
		INSERT INTO sessions (session_id, driver_email, parking_owner_email, start_time, payment_status)
		VALUES ($1, $2, $3, $4, $5);`

	_, err := TxorDB(ctx, r.db).Exec(ctx, query,
		s.ID, s.DriverEmail, s.OwnerEmail, s.StartTime, s.PaymentStatus,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return types.ErrDuplicateSession
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MarkStopped sets end_time on the session, but only when all three
// identifiers agree and the session is still active. A miss (already
// stopped, wrong owner, or nonexistent) returns ErrSessionNotFound and
// performs no update.
func (r *SessionRepo) MarkStopped(ctx context.Context, sessionID uuid.UUID, driverEmail, ownerEmail string, now time.Time) (*models.ParkingSession, error) {
	const op = "SessionRepo.MarkStopped"
	query := `
		UPDATE sessions
		SET end_time = $4
		WHERE session_id = $1 AND driver_email = $2 AND parking_owner_email = $3 AND end_time IS NULL
		RETURNING session_id, driver_email, parking_owner_email, start_time, end_time, payment_status;`

	var s models.ParkingSession
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, sessionID, driverEmail, ownerEmail, now).Scan(
		&s.ID, &s.DriverEmail, &s.OwnerEmail, &s.StartTime, &s.EndTime, &s.PaymentStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &s, nil
}

// MarkPaid flips payment_status to paid. It reports false when the row was
// already paid, which is how concurrent settlements serialize: exactly one
// caller sees true and moves funds.
func (r *SessionRepo) MarkPaid(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	const op = "SessionRepo.MarkPaid"
	query := `
		UPDATE sessions
		SET payment_status = 'paid'
		WHERE session_id = $1 AND payment_status <> 'paid';`

	cmdTag, err := TxorDB(ctx, r.db).Exec(ctx, query, sessionID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

// FindWithOwnerPolicy loads a session joined with its owner's current
// payment policy.
func (r *SessionRepo) FindWithOwnerPolicy(ctx context.Context, sessionID uuid.UUID) (*models.SessionWithPolicy, error) {
	const op = "SessionRepo.FindWithOwnerPolicy"
	query := `
		SELECT s.session_id, s.driver_email, s.parking_owner_email, s.start_time, s.end_time, s.payment_status,
		       o.payment_policy
		FROM sessions s
		JOIN parking_owners o ON s.parking_owner_email = o.email
		WHERE s.session_id = $1;`

	var (
		joined models.SessionWithPolicy
		rate   *types.Amount
	)
	s := &joined.Session
	err := TxorDB(ctx, r.db).QueryRow(ctx, query, sessionID).Scan(
		&s.ID, &s.DriverEmail, &s.OwnerEmail, &s.StartTime, &s.EndTime, &s.PaymentStatus,
		&rate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rate == nil {
		return nil, types.ErrNoPaymentPolicy
	}
	joined.Policy = models.PaymentPolicy{RatePerMinute: *rate}

	return &joined, nil
}

// GetPaymentStatus is the owner-facing payment verification lookup.
func (r *SessionRepo) GetPaymentStatus(ctx context.Context, sessionID uuid.UUID) (types.PaymentStatus, error) {
	const op = "SessionRepo.GetPaymentStatus"
	query := `SELECT payment_status FROM sessions WHERE session_id = $1;`

	var status types.PaymentStatus
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, sessionID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", types.ErrSessionNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return status, nil
}
