package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// pen is the store's currency. x/text only predefines the tender-set units,
// so the sol has to be parsed from its ISO code.
var pen = currency.MustParseISO("PEN")

// Soles wraps an amount in the store's currency (Peruvian sol).
func Soles(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: pen}
}

func (m Money) Format() string {
	return "S/ " + m.Amount.StringFixed(2)
}

// FormatSoles renders a raw price the way every page of the site displays
// money: "S/ " followed by exactly two decimals.
func FormatSoles(v float64) string {
	return Soles(decimal.NewFromFloat(v)).Format()
}

// Round2 rounds to two decimal places using decimal arithmetic, avoiding
// float drift on sums of price*quantity.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
