package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesCurrency(t *testing.T) {
	m, err := New(1500, "eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", m.Currency)

	_, err = New(100, "EURO")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAddAndSubRequireMatchingCurrency(t *testing.T) {
	sum, err := EUR(10000).Add(EUR(2500))
	require.NoError(t, err)
	assert.Equal(t, int64(12500), sum.Cents)

	_, err = EUR(100).Add(Must(100, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	diff, err := EUR(10000).Sub(EUR(1500))
	require.NoError(t, err)
	assert.Equal(t, int64(8500), diff.Cents)
}

func TestPercentTruncatesTowardZero(t *testing.T) {
	assert.Equal(t, int64(3000), EUR(20000).Percent(15).Cents)
	assert.Equal(t, int64(16), EUR(333).Percent(5).Cents)
	assert.Equal(t, int64(0), EUR(10000).Percent(0).Cents)
	assert.Equal(t, int64(0), EUR(10000).Percent(-10).Cents)
}

func TestMultiply(t *testing.T) {
	assert.Equal(t, int64(30000), EUR(10000).Multiply(3).Cents)
}

func TestString(t *testing.T) {
	assert.Equal(t, "170.00 EUR", EUR(17000).String())
	assert.Equal(t, "1.05 EUR", EUR(105).String())
}
