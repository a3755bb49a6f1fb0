package quant

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// PriceMicros represents a dollar price multiplied by 1,000,000 (10^6).
// E.g., 10.01 USD = 10,010,000 PriceMicros.
type PriceMicros int64

// TimeStamp represents Unix Microseconds.
type TimeStamp int64

const (
	PriceScale = 1000000

	// CentMicros is one price increment (one penny) in micros.
	CentMicros PriceMicros = 10000

	// MilliMicros is the quantum for 3-decimal spread rounding.
	MilliMicros PriceMicros = 1000
)

func (p PriceMicros) String() string {
	v := int64(p)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%06d", sign, v/PriceScale, v%PriceScale)
}

// RoundToCent rounds a price to the nearest cent, half away from zero.
func RoundToCent(p PriceMicros) PriceMicros {
	return roundTo(p, CentMicros)
}

// RoundToMilli rounds a price to the nearest 0.001, half away from zero.
func RoundToMilli(p PriceMicros) PriceMicros {
	return roundTo(p, MilliMicros)
}

func roundTo(p, quantum PriceMicros) PriceMicros {
	half := quantum / 2
	if p >= 0 {
		return (p + half) / quantum * quantum
	}
	return -((-p + half) / quantum * quantum)
}

// NextSeq generates the next sequence number atomically.
func NextSeq(ptr *uint64) uint64 {
	return atomic.AddUint64(ptr, 1)
}

// ParseTimeStamp converts a millisecond string to TimeStamp (micros).
func ParseTimeStamp(s string) (TimeStamp, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TimeStamp(ms * 1000), nil
}

// ToPriceMicrosStr converts a numeric string to PriceMicros without using
// float64. Fixed-point string parsing keeps the hotpath float-free.
func ToPriceMicrosStr(s string) PriceMicros {
	return PriceMicros(parseFixedPoint(s, 6))
}

// parseFixedPoint parses a numeric string into an int64 with the given
// precision. E.g., parseFixedPoint("10.01", 6) -> 10,010,000.
func parseFixedPoint(s string, precision int) int64 {
	if s == "" || s == "null" {
		return 0
	}

	intStr, fracStr := s, ""
	if dot := strings.IndexByte(s, '.'); dot != -1 {
		intStr, fracStr = s[:dot], s[dot+1:]
	}

	intPart, _ := strconv.ParseInt(intStr, 10, 64)
	for i := 0; i < precision; i++ {
		intPart *= 10
	}

	if fracStr == "" {
		return intPart
	}

	if len(fracStr) > precision {
		fracStr = fracStr[:precision]
	}
	fracPart, _ := strconv.ParseInt(fracStr, 10, 64)
	for i := len(fracStr); i < precision; i++ {
		fracPart *= 10
	}

	if strings.HasPrefix(intStr, "-") {
		return intPart - fracPart
	}
	return intPart + fracPart
}
