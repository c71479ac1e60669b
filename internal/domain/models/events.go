package models

import (
	"time"

	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

/* ======================= rabbitmq ======================= */

type SessionStartedMessage struct {
	SessionID     uuid.UUID `json:"session_id"`
	DriverEmail   string    `json:"driver_email"`
	OwnerEmail    string    `json:"parking_owner_email"`
	StartTime     time.Time `json:"start_time"`
	CorrelationID string    `json:"correlation_id"`
}

type SessionStoppedMessage struct {
	SessionID       uuid.UUID    `json:"session_id"`
	DriverEmail     string       `json:"driver_email"`
	OwnerEmail      string       `json:"parking_owner_email"`
	DurationSeconds int64        `json:"duration_seconds"`
	TotalAmount     types.Amount `json:"total_amount"`
	PenaltyAmount   types.Amount `json:"penalty_amount"`
	CorrelationID   string       `json:"correlation_id"`
}

type SessionPaidMessage struct {
	SessionID     uuid.UUID    `json:"session_id"`
	DriverEmail   string       `json:"driver_email"`
	OwnerEmail    string       `json:"parking_owner_email"`
	TotalAmount   types.Amount `json:"total_amount"`
	PenaltyAmount types.Amount `json:"penalty_amount"`
	Timestamp     time.Time    `json:"timestamp"`
	CorrelationID string       `json:"correlation_id"`
}
