package service

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places accepted for amounts and prices.
// Responses render money at the same scale, so nothing is hidden by rounding.
const MoneyScale = 2

// WithinMoneyScale reports whether d carries no digits beyond MoneyScale.
// Trailing zeros are fine: "60.0000" is accepted.
func WithinMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// parsePositive parses a client amount that must be positive and within MoneyScale.
func parsePositive(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, newError(ErrInvalidInput, "amount %q is not a number", raw)
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if !WithinMoneyScale(amount) {
		return decimal.Zero, errTooPrecise
	}
	return amount.Truncate(MoneyScale), nil
}

var errTooPrecise = newError(ErrInvalidAmount, "amount may have at most %d decimal places", MoneyScale)
