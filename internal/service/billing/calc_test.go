package billing

import (
	"testing"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
)

func TestCalculate_AtThresholdNoPenalty(t *testing.T) {
	// exactly 360 minutes at 1.00/min
	policy := models.PaymentPolicy{RatePerMinute: types.AmountFromMajor(1)}

	total, penalty := Calculate(21_600_000, policy)
	if total != types.AmountFromMajor(360) {
		t.Fatalf("total: got %s want 360.00", total)
	}
	if penalty != 0 {
		t.Fatalf("penalty at the inclusive boundary must be zero, got %s", penalty)
	}
}

func TestCalculate_OverstayPenalty(t *testing.T) {
	// 370 minutes at 1.00/min, threshold 360, penalty rate 10.00/min:
	// normal 370.00, penalty (370-360)*10.00 = 100.00, total 470.00
	policy := models.PaymentPolicy{
		RatePerMinute:       types.AmountFromMajor(1),
		PenaltyThresholdMin: 360,
		PenaltyRatePerMin:   types.AmountFromMajor(10),
	}

	total, penalty := Calculate(22_200_000, policy)
	if penalty != types.AmountFromMajor(100) {
		t.Fatalf("penalty: got %s want 100.00", penalty)
	}
	if total != types.AmountFromMajor(470) {
		t.Fatalf("total: got %s want 470.00", total)
	}
}

func TestCalculate_DefaultPenaltyRate(t *testing.T) {
	// policy without explicit penalty terms: threshold 360, rate x10
	policy := models.PaymentPolicy{RatePerMinute: types.AmountFromMajor(2)}

	// 361 minutes: normal 722.00, penalty 1 minute at 20.00
	total, penalty := Calculate(361*60_000, policy)
	if penalty != types.AmountFromMajor(20) {
		t.Fatalf("penalty: got %s want 20.00", penalty)
	}
	if total != types.AmountFromMajor(742) {
		t.Fatalf("total: got %s want 742.00", total)
	}
}

func TestCalculate_FractionalMinutes(t *testing.T) {
	// 90 seconds at 1.00/min = 1.50
	policy := models.PaymentPolicy{RatePerMinute: types.AmountFromMajor(1)}

	total, penalty := Calculate(90_000, policy)
	if total != types.Amount(150) {
		t.Fatalf("total: got %s want 1.50", total)
	}
	if penalty != 0 {
		t.Fatalf("penalty: got %s want 0.00", penalty)
	}
}

func TestCalculate_ZeroAndNegativeDuration(t *testing.T) {
	policy := models.PaymentPolicy{RatePerMinute: types.AmountFromMajor(1)}

	if total, _ := Calculate(0, policy); total != 0 {
		t.Fatalf("zero duration must cost nothing, got %s", total)
	}
	if total, _ := Calculate(-5_000, policy); total != 0 {
		t.Fatalf("negative duration must be clamped to zero, got %s", total)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	policy := models.PaymentPolicy{RatePerMinute: types.Amount(175)}

	t1, p1 := Calculate(22_654_321, policy)
	t2, p2 := Calculate(22_654_321, policy)
	if t1 != t2 || p1 != p2 {
		t.Fatalf("repeated calls must agree: (%s, %s) vs (%s, %s)", t1, p1, t2, p2)
	}
}

func BenchmarkCalculate(b *testing.B) {
	policy := models.PaymentPolicy{RatePerMinute: types.Amount(125)}

	for b.Loop() {
		_, _ = Calculate(22_200_000, policy)
	}
}
