package dto

import (
	"time"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	"github.com/arman-qz/parking-system/pkg/uuid"
	"github.com/arman-qz/parking-system/pkg/validator"
)

type StartSessionRequest struct {
	OwnerEmail string `json:"parking_owner_email"`
}

type StopSessionRequest struct {
	OwnerEmail string `json:"parking_owner_email"`
}

func ValidateStartSession(v *validator.Validator, req *StartSessionRequest) {
	v.Check(req.OwnerEmail != "", "parking_owner_email", "must be provided")
	v.Check(validator.Matches(req.OwnerEmail, validator.EmailRX), "parking_owner_email", "must be a valid email address")
}

func ValidateStopSession(v *validator.Validator, req *StopSessionRequest) {
	v.Check(req.OwnerEmail != "", "parking_owner_email", "must be provided")
	v.Check(validator.Matches(req.OwnerEmail, validator.EmailRX), "parking_owner_email", "must be a valid email address")
}

type StartSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Duplicate bool      `json:"duplicate"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	StartTime time.Time `json:"start_time"`
}

func NewStartSessionResponse(r *models.StartResult) StartSessionResponse {
	return StartSessionResponse{
		SessionID: r.SessionID,
		Duplicate: r.Duplicate,
		Lat:       r.Location.Latitude,
		Lon:       r.Location.Longitude,
		StartTime: r.StartTime,
	}
}

type SessionReceiptResponse struct {
	SessionID       uuid.UUID    `json:"session_id"`
	DurationSeconds int64        `json:"duration_seconds"`
	TotalAmount     types.Amount `json:"total_amount"`
	PenaltyAmount   types.Amount `json:"penalty_amount"`
}

func NewSessionReceiptResponse(r *models.SessionReceipt) SessionReceiptResponse {
	return SessionReceiptResponse{
		SessionID:       r.SessionID,
		DurationSeconds: r.DurationSeconds,
		TotalAmount:     r.TotalAmount,
		PenaltyAmount:   r.PenaltyAmount,
	}
}

type ActiveSessionResponse struct {
	SessionID      uuid.UUID    `json:"session_id"`
	OwnerEmail     string       `json:"parking_owner_email"`
	StartTime      time.Time    `json:"start_time"`
	ElapsedSeconds int64        `json:"elapsed_seconds"`
	TotalAmount    types.Amount `json:"total_amount"`
	PenaltyAmount  types.Amount `json:"penalty_amount"`
}

func NewActiveSessionResponse(s *models.ActiveSessionStatus) ActiveSessionResponse {
	return ActiveSessionResponse{
		SessionID:      s.SessionID,
		OwnerEmail:     s.OwnerEmail,
		StartTime:      s.StartTime,
		ElapsedSeconds: s.ElapsedSeconds,
		TotalAmount:    s.TotalAmount,
		PenaltyAmount:  s.PenaltyAmount,
	}
}
