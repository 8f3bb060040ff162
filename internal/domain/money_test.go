// internal/domain/money_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerflow-wallet/internal/util"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(1050, "BRL")
	assert.NoError(t, err)
	assert.Equal(t, int64(1050), m.AmountCents)
	assert.Equal(t, "BRL", m.Currency)
	assert.Equal(t, "10.50", m.Decimal())

	_, err = NewMoney(-1, "BRL")
	assert.ErrorIs(t, err, util.ErrInvalidAmount)
}

func TestMoneyFromDecimal(t *testing.T) {
	m, err := MoneyFromDecimal("500.00", "BRL")
	assert.NoError(t, err)
	assert.Equal(t, int64(50000), m.AmountCents)

	m, err = MoneyFromDecimal("0.01", "BRL")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), m.AmountCents)

	_, err = MoneyFromDecimal("10.005", "BRL")
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = MoneyFromDecimal("-1.00", "BRL")
	assert.ErrorIs(t, err, util.ErrInvalidAmount)

	_, err = MoneyFromDecimal("not-a-number", "BRL")
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestMoneyArithmetic(t *testing.T) {
	a, _ := NewMoney(1000, "BRL")
	b, _ := NewMoney(250, "BRL")

	sum, err := a.Add(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(1250), sum.AmountCents)
	// Operands are unchanged
	assert.Equal(t, int64(1000), a.AmountCents)

	diff, err := a.Subtract(b)
	assert.NoError(t, err)
	assert.Equal(t, int64(750), diff.AmountCents)

	_, err = b.Subtract(a)
	assert.ErrorIs(t, err, util.ErrInsufficientBalance)

	usd, _ := NewMoney(100, "USD")
	_, err = a.Add(usd)
	assert.ErrorIs(t, err, util.ErrCurrencyMismatch)
	_, err = a.Subtract(usd)
	assert.ErrorIs(t, err, util.ErrCurrencyMismatch)
}
