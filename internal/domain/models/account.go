package models

import (
	"time"

	"github.com/arman-qz/parking-system/internal/domain/types"
)

type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// PaymentPolicy is an owner's billing policy. Rate is charged per parked
// minute; minutes beyond PenaltyThresholdMin are charged at PenaltyRate.
// Zero-valued penalty fields fall back to the billing defaults.
type PaymentPolicy struct {
	RatePerMinute       types.Amount `json:"rate_per_minute"`
	PenaltyThresholdMin int64        `json:"penalty_threshold_min,omitempty"`
	PenaltyRatePerMin   types.Amount `json:"penalty_rate_per_minute,omitempty"`
}

type Driver struct {
	Email     string
	Balance   types.Amount
	CreatedAt time.Time

	passwordHash string
}

func (d *Driver) PasswordHash() string {
	return d.passwordHash
}

func (d *Driver) SetPasswordHash(hash string) {
	d.passwordHash = hash
}

type ParkingOwner struct {
	Email     string
	Location  *Location
	Balance   types.Amount
	Policy    *PaymentPolicy
	CreatedAt time.Time

	passwordHash string
}

func (o *ParkingOwner) PasswordHash() string {
	return o.passwordHash
}

func (o *ParkingOwner) SetPasswordHash(hash string) {
	o.passwordHash = hash
}

// OwnerProfile is the owner-facing read model.
type OwnerProfile struct {
	Email    string         `json:"email"`
	Location *Location      `json:"location,omitempty"`
	Balance  types.Amount   `json:"balance"`
	Policy   *PaymentPolicy `json:"payment_policy,omitempty"`
}
