package models

import (
	"time"

	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

// ParkingSession is one row of the append-only session audit trail.
// EndTime and PaymentStatus each transition exactly once:
// active (EndTime nil, unpaid) -> stopped (EndTime set, unpaid) -> paid.
type ParkingSession struct {
	ID            uuid.UUID
	DriverEmail   string
	OwnerEmail    string
	StartTime     time.Time
	EndTime       *time.Time
	PaymentStatus types.PaymentStatus
}

func (s *ParkingSession) IsActive() bool {
	return s.EndTime == nil
}

// SessionWithPolicy joins a session row with its owner's current billing terms.
type SessionWithPolicy struct {
	Session ParkingSession
	Policy  PaymentPolicy
}

/* ======================= lifecycle results ======================= */

// StartResult reports either a freshly created session or, when the driver
// already has an active one, the existing session tagged as duplicate.
type StartResult struct {
	SessionID uuid.UUID `json:"session_id"`
	Duplicate bool      `json:"duplicate"`
	Location  Location  `json:"location"`
	StartTime time.Time `json:"start_time"`
}

// SessionReceipt carries the billed duration and amounts for a stopped or
// paid session. StopSession returns it as an estimate; PaySession as the
// settled figures.
type SessionReceipt struct {
	SessionID       uuid.UUID    `json:"session_id"`
	DurationSeconds int64        `json:"duration_seconds"`
	TotalAmount     types.Amount `json:"total_amount"`
	PenaltyAmount   types.Amount `json:"penalty_amount"`
}

// ActiveSessionStatus is the live view of a running session, amounts
// computed against now.
type ActiveSessionStatus struct {
	SessionID       uuid.UUID    `json:"session_id"`
	OwnerEmail      string       `json:"parking_owner_email"`
	StartTime       time.Time    `json:"start_time"`
	ElapsedSeconds  int64        `json:"elapsed_seconds"`
	TotalAmount     types.Amount `json:"total_amount"`
	PenaltyAmount   types.Amount `json:"penalty_amount"`
}
