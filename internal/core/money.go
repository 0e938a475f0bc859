// Package core holds the rental domain model and the pure reconciliation and
// receipt logic. Monetary amounts are integral cents throughout; floats only
// appear at the JSON boundary.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents. Negative values are legal (corrections,
// refunds) and propagate into aggregates unchanged.
type Money struct {
	Cents int64
}

// split breaks the amount into sign, whole dollars and remaining cents. The
// remainder is always non-negative.
func (m Money) split() (neg bool, whole, frac int64) {
	c := m.Cents
	if c < 0 {
		neg = true
		c = -c
	}
	return neg, c / 100, c % 100
}

// Decimal renders the amount as a plain decimal string with two fractional
// digits, e.g. "1200.00" or "-35.50".
func (m Money) Decimal() string {
	neg, whole, frac := m.split()
	s := strconv.FormatInt(whole, 10) + "." + fmt.Sprintf("%02d", frac)
	if neg {
		return "-" + s
	}
	return s
}

// String renders the amount with a dollar sign, the receipt format.
func (m Money) String() string {
	neg, whole, frac := m.split()
	s := fmt.Sprintf("$%d.%02d", whole, frac)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON emits the amount as a JSON number in dollars so the wire format
// stays the plain decimal the API consumers expect.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		m.Cents = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third fractional digit. Both "12.34" and "12,34" separators
// are accepted, as are signed and empty inputs (empty parses as zero, the
// form-field behavior this API inherits).
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// Add returns m + n.
func (m Money) Add(n Money) Money { return Money{Cents: m.Cents + n.Cents} }

// Sub returns m - n.
func (m Money) Sub(n Money) Money { return Money{Cents: m.Cents - n.Cents} }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }
