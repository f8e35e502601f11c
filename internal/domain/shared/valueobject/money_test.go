package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency Currency
		wantErr  string
	}{
		{"valid", "123.45", DefaultCurrency, ""},
		{"negative parses", "-1", DefaultCurrency, ""},
		{"not a number", "twelve", DefaultCurrency, "invalid amount"},
		{"no currency", "1", "", "currency cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromString(tt.amount, tt.currency)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, m.Amount().Equal(decimal.RequireFromString(tt.amount)))
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestMoney_Times(t *testing.T) {
	unit := NewDefaultMoneyFromFloat(10.10)
	assert.True(t, unit.Times(3).Amount().Equal(decimal.RequireFromString("30.3")))
	assert.True(t, unit.Times(0).Amount().IsZero())
	assert.Equal(t, DefaultCurrency, unit.Times(2).Currency())
	assert.True(t, NewDefaultMoneyFromFloat(-1).IsNegative())
}

func TestFormatAmount(t *testing.T) {
	m := NewDefaultMoney(decimal.RequireFromString("33.3333333"))
	assert.Equal(t, "33.33 USD", m.String())
	assert.Equal(t, "33.3333333", m.Amount().String(), "formatting never rounds the stored amount")

	assert.Equal(t, "0.01", FormatAmount(decimal.RequireFromString("0.005")))
	assert.Equal(t, "-12.50", FormatAmount(decimal.RequireFromString("-12.5")))
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
}
