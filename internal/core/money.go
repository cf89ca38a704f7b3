// Package core provides money parsing and handling utilities.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed decimal currency value. Sums are exact; float64 is
// only used for statistics and plotting.
type Money struct {
	decimal.Decimal
}

// ParseAmount converts a decimal string to Money.
//
// A leading currency sign is tolerated, before or after the sign:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("-$5")    -> -5
//	ParseAmount("$-5.50") -> -5.50
//	ParseAmount("--5")    -> error
func ParseAmount(s string) (Money, error) {
	orig := s
	s = strings.TrimSpace(s)
	neg, signed := false, false
	sign := func() {
		if !signed && (strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+")) {
			neg = s[0] == '-'
			signed = true
			s = s[1:]
		}
	}
	sign()
	if rest, ok := strings.CutPrefix(s, "$"); ok {
		s = strings.TrimSpace(rest)
		sign()
	}
	// At most one sign in total.
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, orig)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if neg {
		d = d.Neg()
	}
	return Money{Decimal: d}, nil
}

// MustParseAmount is ParseAmount for literals; it panics on bad input.
func MustParseAmount(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

// Float64 returns the value for display and plotting purposes.
func (m Money) Float64() float64 {
	return m.InexactFloat64()
}

// String renders two decimal places.
func (m Money) String() string {
	return m.StringFixed(2)
}
