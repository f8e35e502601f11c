package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

// DefaultCurrency prices medicines and services unless a currency is given.
const DefaultCurrency Currency = "USD"

// DisplayPlaces is the scale of amounts shown to users. Stored and computed
// amounts keep full precision.
const DisplayPlaces int32 = 2

// Money is an immutable amount in a currency.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoneyFromString parses amount, e.g. "12.50".
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{amount: d, currency: currency}, nil
}

func NewDefaultMoney(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: DefaultCurrency}
}

func NewDefaultMoneyFromFloat(amount float64) Money {
	return NewDefaultMoney(decimal.NewFromFloat(amount))
}

func (m Money) Amount() decimal.Decimal { return m.amount }

func (m Money) Currency() Currency { return m.currency }

func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Times is the line total for qty units priced at m.
func (m Money) Times(qty int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(qty))), currency: m.currency}
}

// String renders "12.50 USD".
func (m Money) String() string {
	return FormatAmount(m.amount) + " " + string(m.currency)
}

// FormatAmount rounds d half away from zero to DisplayPlaces.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(DisplayPlaces)
}
