// Package money formats statement amounts for display. Arithmetic stays on
// shopspring/decimal; go-money supplies ISO-4217 currency metadata and the
// locale-aware rendering used by the preview surface.
package money

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217).
const (
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	INR = "INR"
	LKR = "LKR"
)

// Money is a display-oriented monetary value. It holds minor units so
// formatting never loses precision.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units (cents) and a currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// NewFromDecimal converts a decimal amount into the currency's minor units.
// Unknown currency codes fall back to USD metadata.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}
	cents := amount.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return New(cents, currency.Code)
}

// NewFromString parses a display string such as "1,234.56" or "$ 999.00".
func NewFromString(amount, currencyCode string) (*Money, error) {
	cleaned := strings.TrimSpace(amount)
	for _, sym := range []string{"$", "€", "£", "₹", "Rs.", "Rs"} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewFromDecimal(d, currencyCode), nil
}

// Amount returns the value in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsNegative reports whether the value is below zero.
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Abs returns the absolute value.
func (m *Money) Abs() *Money {
	if m == nil || m.m == nil {
		return m
	}
	return &Money{m: m.m.Absolute()}
}

// Add sums two values of the same currency.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || other == nil {
		return nil, fmt.Errorf("cannot add nil money values")
	}
	sum, err := m.m.Add(other.m)
	if err != nil {
		return nil, fmt.Errorf("add money: %w", err)
	}
	return &Money{m: sum}, nil
}

// ToDecimal converts back to a decimal in major units.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	fraction := m.m.Currency().Fraction
	return decimal.New(m.m.Amount(), -int32(fraction))
}

// Display renders the value with its currency symbol, e.g. "$1,234.50".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

// String implements fmt.Stringer using Display.
func (m *Money) String() string { return m.Display() }
