// internal/domain/money.go
package domain

import (
	"fmt"

	"github.com/shopspring/decimal" // For precise monetary calculations

	"ledgerflow-wallet/internal/util"
)

// Money holds a monetary amount in minor units (cents).
// Example: R$ 10.50 is stored as 1050. Balances are never negative;
// arithmetic produces new instances.
type Money struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"` // ISO 4217 code, e.g. "BRL", "USD"
}

// NewMoney creates a Money value. Negative amounts are rejected: a Money
// represents a balance or an operation amount, never a signed delta.
func NewMoney(amountCents int64, currency string) (Money, error) {
	if amountCents < 0 {
		return Money{}, fmt.Errorf("money: amount %d: %w", amountCents, util.ErrInvalidAmount)
	}
	return Money{AmountCents: amountCents, Currency: currency}, nil
}

// MoneyFromDecimal parses a decimal string like "50.00" into cents.
// Amounts with sub-cent precision are rejected.
func MoneyFromDecimal(amount string, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", amount, util.ErrInvalidInput)
	}
	if d.IsNegative() {
		return Money{}, fmt.Errorf("money: negative amount %q: %w", amount, util.ErrInvalidAmount)
	}
	cents := d.Mul(decimal.NewFromInt(100))
	if !cents.IsInteger() {
		return Money{}, fmt.Errorf("money: %q has sub-cent precision: %w", amount, util.ErrInvalidInput)
	}
	return Money{AmountCents: cents.IntPart(), Currency: currency}, nil
}

// Add returns the sum of two Money values with the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("money: cannot add %s to %s: %w", other.Currency, m.Currency, util.ErrCurrencyMismatch)
	}
	return Money{AmountCents: m.AmountCents + other.AmountCents, Currency: m.Currency}, nil
}

// Subtract returns the difference of two Money values with the same currency.
// A result below zero is rejected.
func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("money: cannot subtract %s from %s: %w", other.Currency, m.Currency, util.ErrCurrencyMismatch)
	}
	if m.AmountCents < other.AmountCents {
		return Money{}, fmt.Errorf("money: %d < %d: %w", m.AmountCents, other.AmountCents, util.ErrInsufficientBalance)
	}
	return Money{AmountCents: m.AmountCents - other.AmountCents, Currency: m.Currency}, nil
}

// Decimal renders the amount as a two-place decimal string, e.g. "105.00".
func (m Money) Decimal() string {
	return decimal.NewFromInt(m.AmountCents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.AmountCents == 0
}
