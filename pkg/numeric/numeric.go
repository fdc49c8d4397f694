// Package numeric normalizes operator-entered decimal strings.
//
// Operators type values with either a comma or a dot separator ("5,2" and
// "5.2" are the same weight). Blank input is reported separately from
// garbage so callers can treat optional fields as omitted.
package numeric

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrBlank         = errors.New("numeric: blank input")
	ErrInvalidNumber = errors.New("numeric: invalid number")
)

// Normalize trims the input and replaces the first comma with a dot.
func Normalize(raw string) string {
	return strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
}

// IsBlank reports whether raw holds only whitespace.
func IsBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

// Parse returns the finite number held by raw. Zero and negative values are
// accepted.
func Parse(raw string) (float64, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	return finite(d)
}

// ParsePositive is Parse restricted to values greater than zero.
func ParsePositive(raw string) (float64, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsPositive() {
		return 0, ErrInvalidNumber
	}
	return finite(d)
}

// finite converts d and rejects magnitudes float64 cannot hold.
func finite(d decimal.Decimal) (float64, error) {
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, ErrInvalidNumber
	}
	return f, nil
}

// Canonical returns the normalized decimal text of raw ("4,50" -> "4.5").
func Canonical(raw string) (string, error) {
	d, err := parseDecimal(raw)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	s := Normalize(raw)
	if s == "" {
		return decimal.Zero, ErrBlank
	}
	if !plausible(s) {
		return decimal.Zero, ErrInvalidNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidNumber
	}
	return d, nil
}

// plausible rejects spellings decimal would otherwise accept or choke on
// (exponents, embedded spaces, a second separator).
func plausible(s string) bool {
	digits := 0
	seps := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			seps++
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return digits > 0 && seps <= 1
}

// Filter is the typing filter for positive numeric inputs: only digits and at
// most one separator are allowed. It returns the input unchanged and whether
// it may be stored.
func Filter(raw string) (string, bool) {
	seps := 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r == ',' || r == '.':
			seps++
			if seps > 1 {
				return raw, false
			}
		default:
			return raw, false
		}
	}
	return raw, true
}
