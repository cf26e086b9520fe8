package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyUSD(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(50.00))
	assert.Equal(t, USD, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(50.00)))
}

func TestNewMoneyUSDFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyUSDFromString("123.45")
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyUSDFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestZero(t *testing.T) {
	m := Zero(EUR)
	assert.True(t, m.IsZero())
	assert.Equal(t, EUR, m.Currency())

	assert.True(t, ZeroUSD().IsZero())
	assert.Equal(t, USD, ZeroUSD().Currency())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("same currency", func(t *testing.T) {
		a := NewMoneyUSD(decimal.NewFromFloat(19.99))
		b := NewMoneyUSD(decimal.NewFromFloat(39.98))
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "59.97", sum.StringFixed(2))
	})

	t.Run("different currencies", func(t *testing.T) {
		a := NewMoneyUSD(decimal.NewFromInt(10))
		b, _ := NewMoney(decimal.NewFromInt(10), EUR)
		_, err := a.Add(b)
		assert.Error(t, err)
	})
}

func TestMoneySubtract(t *testing.T) {
	a := NewMoneyUSD(decimal.NewFromFloat(64.47))
	b := NewMoneyUSD(decimal.NewFromFloat(4.50))
	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "59.97", diff.StringFixed(2))

	c, _ := NewMoney(decimal.NewFromInt(1), GBP)
	_, err = a.Subtract(c)
	assert.Error(t, err)
}

func TestMoneyMultiply(t *testing.T) {
	unit := NewMoneyUSD(decimal.NewFromFloat(19.99))
	total := unit.MultiplyByInt(3)
	assert.Equal(t, "59.97", total.StringFixed(2))
}

func TestMoneyMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1999), NewMoneyUSD(decimal.NewFromFloat(19.99)).MinorUnits())
	assert.Equal(t, int64(10000), NewMoneyUSD(decimal.NewFromInt(100)).MinorUnits())
	assert.Equal(t, int64(0), ZeroUSD().MinorUnits())
}

func TestMoneyCalculatePercentage(t *testing.T) {
	subtotal := NewMoneyUSD(decimal.NewFromFloat(59.97))
	tax := subtotal.CalculatePercentage(decimal.NewFromFloat(7.5)).Round(2)
	assert.Equal(t, "4.50", tax.StringFixed(2))
}

func TestMoneyComparisons(t *testing.T) {
	a := NewMoneyUSD(decimal.NewFromInt(10))
	b := NewMoneyUSD(decimal.NewFromInt(20))

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, gt)

	assert.True(t, a.Equals(NewMoneyUSD(decimal.NewFromInt(10))))
	assert.False(t, a.Equals(b))

	c, _ := NewMoney(decimal.NewFromInt(10), NGN)
	_, err = a.LessThan(c)
	assert.Error(t, err)
}

func TestMoneySignChecks(t *testing.T) {
	assert.True(t, NewMoneyUSD(decimal.NewFromInt(5)).IsPositive())
	assert.True(t, NewMoneyUSD(decimal.NewFromInt(-5)).IsNegative())
	assert.True(t, ZeroUSD().IsZero())
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(64.47))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"64.47","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("19.99"))
	assert.Equal(t, USD, m.Currency())
	assert.Equal(t, "19.99", m.StringFixed(2))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(42))
}

func TestMoneyString(t *testing.T) {
	m := NewMoneyUSD(decimal.NewFromFloat(4.5))
	assert.Equal(t, "4.50 USD", m.String())
}
