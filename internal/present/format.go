package present

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatBRL renders an amount as "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	return "R$ " + formatNumber(d)
}

// SignedBRL renders an amount with a leading sign, as in "+R$ 10,00".
func SignedBRL(d decimal.Decimal, income bool) string {
	sign := "-"
	if income {
		sign = "+"
	}
	return sign + FormatBRL(d)
}

// FormatPercent renders a percentage with one decimal, as in "40.0%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

func formatNumber(d decimal.Decimal) string {
	return humanize.FormatFloat("#.###,##", d.Round(2).InexactFloat64())
}

// Initial is the upper-cased first letter of name, or "U".
func Initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "U"
	}
	r := []rune(name)
	return strings.ToUpper(string(r[0]))
}
