package portfolio

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// currency looks code up in the go-money table. Unknown codes come back
// without a template.
func currency(code string) (*money.Currency, bool) {
	cur := money.New(0, strings.ToUpper(code)).Currency()
	return cur, cur.Template != ""
}

// Format renders amount in currency using the currency's own grapheme,
// separators and number of fraction digits.
func Format(amount decimal.Decimal, code string) string {
	cur, known := currency(code)
	if !known {
		return strings.TrimSpace(amount.StringFixed(2) + " " + strings.ToUpper(code))
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatSigned is Format with an explicit "+" for gains.
func FormatSigned(amount decimal.Decimal, code string) string {
	if amount.IsPositive() {
		return "+" + Format(amount, code)
	}
	return Format(amount, code)
}

// FormatPct renders a percentage with two decimals, e.g. "+20.00%".
func FormatPct(pct decimal.Decimal) string {
	s := pct.StringFixed(2) + "%"
	if pct.IsPositive() {
		return "+" + s
	}
	return s
}

// Round rounds amount to the number of fraction digits of the currency,
// e.g. cents for USD and whole units for KRW.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	cur, known := currency(code)
	if !known {
		return amount.Round(2)
	}
	return amount.Round(int32(cur.Fraction))
}
