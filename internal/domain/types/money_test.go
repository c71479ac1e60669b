package types

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want Amount
	}{
		{"12.34", 1234},
		{"0.50", 50},
		{"0.5", 50},
		{"7", 700},
		{"-0.5", -50},
		{"+3.00", 300},
		{" 10.00 ", 1000},
		// extra decimal places normalize half-up to currency precision
		{"1.005", 101},
		{"1.004", 100},
		{"1.0049", 100},
		{"-1.005", -101},
		{"0.999", 100},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1..2", "12,34", "1.2x"} {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q): expected error", in)
		}
	}
}

func TestAmount_String(t *testing.T) {
	cases := []struct {
		in   Amount
		want string
	}{
		{1234, "12.34"},
		{50, "0.50"},
		{0, "0.00"},
		{-50, "-0.50"},
		{100_000_00, "100000.00"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Fatalf("Amount(%d).String() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAmount_RoundTrip(t *testing.T) {
	for _, a := range []Amount{0, 1, 99, 100, 1234, -1234, 500000} {
		parsed, err := ParseAmount(a.String())
		if err != nil {
			t.Fatalf("round trip of %d: %v", a, err)
		}
		if parsed != a {
			t.Fatalf("round trip of %d gave %d", a, parsed)
		}
	}
}

func TestAmountFromFloat_Rounding(t *testing.T) {
	cases := []struct {
		in   float64
		want Amount
	}{
		{1.005, 101}, // half rounds away from zero
		{1.004, 100},
		{-1.005, -101},
		{0, 0},
	}
	for _, c := range cases {
		if got := AmountFromFloat(c.in); got != c.want {
			t.Fatalf("AmountFromFloat(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestAmount_Arithmetic(t *testing.T) {
	a := AmountFromMajor(10)
	b, err := ParseAmount("2.50")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := a.Add(b); got != 1250 {
		t.Fatalf("10.00 + 2.50 = %s", got)
	}
	if got := a.Sub(b); got != 750 {
		t.Fatalf("10.00 - 2.50 = %s", got)
	}
	if got := b.MulInt(4); got != 1000 {
		t.Fatalf("2.50 * 4 = %s", got)
	}
	if !Amount(0).IsZero() || Amount(1).IsZero() {
		t.Fatalf("IsZero misbehaves")
	}
	if !Amount(-1).IsNegative() || Amount(1).IsNegative() {
		t.Fatalf("IsNegative misbehaves")
	}
}

func TestAmount_JSON(t *testing.T) {
	out, err := json.Marshal(Amount(1234))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "12.34" {
		t.Fatalf("marshal gave %s, want 12.34", out)
	}

	var fromNumber Amount
	if err := json.Unmarshal([]byte("12.34"), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if fromNumber != 1234 {
		t.Fatalf("unmarshal number gave %d", fromNumber)
	}

	var fromString Amount
	if err := json.Unmarshal([]byte(`"0.50"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if fromString != 50 {
		t.Fatalf("unmarshal string gave %d", fromString)
	}
}
