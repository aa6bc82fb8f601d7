// Package money renders decimal USD/VND figures as display strings
// for API payloads and notifications.
package money

import (
	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatUSD renders a USD amount like "$1,234.56".
func FormatUSD(d decimal.Decimal) string {
	cents := d.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
	return gomoney.New(cents, gomoney.USD).Display()
}

// FormatVND renders a VND amount like "₫25,400,000". VND has no minor
// unit, so the amount is rounded to whole dong.
func FormatVND(d decimal.Decimal) string {
	units := d.Round(0).IntPart()
	return gomoney.New(units, gomoney.VND).Display()
}
