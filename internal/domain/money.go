package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. All balance and price arithmetic happens on
// this fixed-point representation; decimals exist only at the API boundary.
type Money int64

// MoneyFromDecimalString parses a two-decimal amount like "12.50".
// Amounts with more than two fractional digits are rejected rather than
// rounded, since prices and balances are defined at cent precision.
func MoneyFromDecimalString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a decimal amount", ErrInvalidInput, s)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("%w: %q has sub-cent precision", ErrInvalidInput, s)
	}
	return Money(d.Shift(2).IntPart()), nil
}

// Decimal returns the amount as a two-decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String formats the amount with exactly two decimal places, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON string like "12.50" so clients
// never see binary-float artifacts.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both "12.50" and a bare 12.5 for compatibility with
// older clients.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := MoneyFromDecimalString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
