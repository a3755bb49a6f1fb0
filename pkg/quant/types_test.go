package quant

import (
	"testing"
)

func TestToPriceMicrosStr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want PriceMicros
	}{
		{"Whole", "10", 10000000},
		{"TwoDecimals", "10.01", 10010000},
		{"ThreeDecimals", "10.015", 10015000},
		{"LongFraction", "10.0123456789", 10012345},
		{"Zero", "0", 0},
		{"Empty", "", 0},
		{"Null", "null", 0},
		{"Negative", "-1.25", -1250000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToPriceMicrosStr(tt.in); got != tt.want {
				t.Errorf("ToPriceMicrosStr(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundToCent(t *testing.T) {
	tests := []struct {
		name string
		in   PriceMicros
		want PriceMicros
	}{
		{"Exact", 10000, 10000},
		{"RoundDown", 12400, 10000},
		{"RoundUp", 17500, 20000},
		{"HalfUp", 15000, 20000},
		{"NegativeDown", -12400, -10000},
		{"NegativeHalf", -15000, -20000},
		{"Zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundToCent(tt.in); got != tt.want {
				t.Errorf("RoundToCent(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundToMilli(t *testing.T) {
	// 10.0104 -> 10.010, 10.0105 -> 10.011
	if got := RoundToMilli(10010400); got != 10010000 {
		t.Errorf("got %d, want 10010000", got)
	}
	if got := RoundToMilli(10010500); got != 10011000 {
		t.Errorf("got %d, want 10011000", got)
	}
}

func TestParseTimeStamp(t *testing.T) {
	ts, err := ParseTimeStamp("1700000000123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != 1700000000123000 {
		t.Errorf("got %d, want 1700000000123000", ts)
	}

	if _, err := ParseTimeStamp("not-a-number"); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestPriceMicrosString(t *testing.T) {
	if got := PriceMicros(10010000).String(); got != "10.010000" {
		t.Errorf("got %q, want %q", got, "10.010000")
	}
	if got := PriceMicros(-1250000).String(); got != "-1.250000" {
		t.Errorf("got %q, want %q", got, "-1.250000")
	}
}
