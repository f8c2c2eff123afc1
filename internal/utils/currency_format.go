package utils

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatWithCurrency renders an amount the way the currency displays it,
// e.g. "$1,234.50". Unknown codes and amounts beyond int64 minor units fall
// back to the plain two-place amount.
func FormatWithCurrency(amount decimal.Decimal, currencyCode string) string {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Shift(int32(currency.Fraction)).Round(0)
	if !minor.BigInt().IsInt64() {
		return amount.StringFixed(2)
	}
	return money.New(minor.IntPart(), currency.Code).Display()
}
