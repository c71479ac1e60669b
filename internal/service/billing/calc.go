package billing

import (
	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
)

const (
	// Minutes a driver may park before the overstay penalty rate kicks in.
	// The boundary is inclusive: exactly at the threshold no penalty applies.
	DefaultPenaltyThresholdMin int64 = 360

	// Overstay minutes cost this multiple of the base rate unless the
	// policy sets an explicit penalty rate.
	DefaultPenaltyMultiplier int64 = 10

	msPerMinute int64 = 60_000
)

// Calculate turns a parked duration and an owner's payment policy into the
// owed total and its penalty portion. Pure and deterministic: no I/O, no
// clock, integer arithmetic only (minor units), so repeated calls for the
// same session always produce identical amounts.
func Calculate(durationMs int64, policy models.PaymentPolicy) (total, penalty types.Amount) {
	if durationMs < 0 {
		durationMs = 0
	}

	rate := policy.RatePerMinute

	threshold := policy.PenaltyThresholdMin
	if threshold <= 0 {
		threshold = DefaultPenaltyThresholdMin
	}

	penaltyRate := policy.PenaltyRatePerMin
	if penaltyRate <= 0 {
		penaltyRate = rate.MulInt(DefaultPenaltyMultiplier)
	}

	normal := prorate(rate, durationMs)

	thresholdMs := threshold * msPerMinute
	if durationMs > thresholdMs {
		penalty = prorate(penaltyRate, durationMs-thresholdMs)
	}

	return normal.Add(penalty), penalty
}

// prorate charges a per-minute rate over an arbitrary duration, rounding
// half-up to the nearest minor unit.
func prorate(ratePerMinute types.Amount, durationMs int64) types.Amount {
	num := int64(ratePerMinute) * durationMs
	return types.Amount((num + msPerMinute/2) / msPerMinute)
}
