package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a monetary value in minor currency units (e.g. cents).
// All arithmetic is integer-only — no floating point. Balances, rates and
// computed bills are carried as Amount end to end; conversion to and from
// decimal notation happens only at the API boundary.
type Amount int64

const minorUnitsPerMajor = 100

var ErrInvalidAmount = errors.New("invalid amount")

// AmountFromMajor converts whole major units (e.g. dollars) to Amount.
func AmountFromMajor(units int64) Amount {
	return Amount(units * minorUnitsPerMajor)
}

// AmountFromFloat converts a float to Amount, rounding half away from zero
// to the nearest minor unit. Only used at API boundaries.
func AmountFromFloat(v float64) Amount {
	scaled := v * minorUnitsPerMajor
	if scaled >= 0 {
		return Amount(scaled + 0.5)
	}
	return Amount(scaled - 0.5)
}

// ParseAmount parses decimal notation ("12.34", "-0.5", "7") into Amount.
// Extra decimal places are normalized to currency precision, rounding
// half-up away from zero ("1.005" -> 1.01).
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	for _, c := range fracPart {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: non-digit in fraction", ErrInvalidAmount)
		}
	}
	roundUp := false
	if len(fracPart) > 2 {
		roundUp = fracPart[2] >= '5'
		fracPart = fracPart[:2]
	}
	// pad "5" -> "50" so cents scale correctly
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	major, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	minor, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if roundUp {
		minor++
	}

	total := major*minorUnitsPerMajor + minor
	if neg {
		total = -total
	}
	return Amount(total), nil
}

// String formats the Amount in decimal notation with two places.
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/minorUnitsPerMajor, v%minorUnitsPerMajor)
}

// Float64 returns the value in major units. Boundary use only.
func (a Amount) Float64() float64 {
	return float64(a) / minorUnitsPerMajor
}

func (a Amount) Add(other Amount) Amount { return a + other }

func (a Amount) Sub(other Amount) Amount { return a - other }

// MulInt multiplies the Amount by a plain quantity.
func (a Amount) MulInt(qty int64) Amount { return Amount(int64(a) * qty) }

func (a Amount) IsZero() bool     { return a == 0 }
func (a Amount) IsNegative() bool { return a < 0 }

// MarshalJSON emits a bare decimal number ("12.34") so clients see
// currency values, not raw minor units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
