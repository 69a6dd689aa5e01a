// Package money converts between decimal amount strings and integer minor units (cents).
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmptyAmount    = errors.New("amount required")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrTooManyDecimal = errors.New("amount supports up to 2 decimals")
	ErrNotPositive    = errors.New("amount must be > 0")
)

// ParseCents converts a decimal string with up to 2 fractional digits into cents.
// Only strictly positive amounts are accepted.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAmount
	}

	neg := false

	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 || parts[0] == "" {
		return 0, ErrInvalidAmount
	}

	frac := "00"

	if len(parts) == 2 {
		if len(parts[1]) > 2 {
			return 0, ErrTooManyDecimal
		}

		frac = parts[1] + strings.Repeat("0", 2-len(parts[1]))
	}

	// Signs were consumed above; anything but digits from here on is malformed.
	if !digitsOnly(parts[0]) || !digitsOnly(frac) {
		return 0, ErrInvalidAmount
	}

	ip, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: integer part: %v", ErrInvalidAmount, err)
	}

	fp, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: fractional part: %v", ErrInvalidAmount, err)
	}

	if ip > (math.MaxInt64-fp)/100 {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}

	total := ip*100 + fp
	if neg {
		total = -total
	}

	if total <= 0 {
		return 0, ErrNotPositive
	}

	return total, nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// FormatCents renders cents as a decimal string with exactly 2 fractional digits.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
