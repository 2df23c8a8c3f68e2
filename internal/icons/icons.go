// Package icons maps categories to the glyph and color token shown next to a
// transaction.
package icons

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"mia/internal/core"
)

// Icon names a glyph of the UI icon set.
type Icon string

const (
	DollarSign   Icon = "dollar-sign"
	TrendingUp   Icon = "trending-up"
	TrendingDown Icon = "trending-down"
	Home         Icon = "home"
	Utensils     Icon = "utensils"
	Car          Icon = "car"
)

// Color tokens of the design system.
const (
	ColorPrimary = "bg-primary"
	ColorIncome  = "bg-green-500"
	ColorExpense = "bg-red-500"
)

var byCategory = map[string]Icon{
	key("Salário"):       DollarSign,
	key("Freelances"):    DollarSign,
	key("Investimentos"): TrendingUp,
	key("Moradia"):       Home,
	key("Alimentação"):   Utensils,
	key("Transporte"):    Car,
}

func key(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Resolve returns the icon of a category name, falling back to the
// transaction type default for unknown or empty names.
func Resolve(category string, t core.TxType) Icon {
	if ic, ok := byCategory[key(category)]; ok {
		return ic
	}
	return Default(t)
}

// Default is dollar-sign for income and trending-down for anything else.
func Default(t core.TxType) Icon {
	if t == core.Receita {
		return DollarSign
	}
	return TrendingDown
}

// ResolveColor picks the badge color. Any category carrying a color maps to
// the single primary token.
func ResolveColor(c *core.CategoryRef, t core.TxType) string {
	if c != nil && c.Color != "" {
		return ColorPrimary
	}
	if t == core.Receita {
		return ColorIncome
	}
	return ColorExpense
}

// Glyph is a plain-text stand-in for terminals.
func (i Icon) Glyph() string {
	switch i {
	case DollarSign:
		return "$"
	case TrendingUp:
		return "↗"
	case TrendingDown:
		return "↘"
	case Home:
		return "⌂"
	case Utensils:
		return "🍴"
	case Car:
		return "🚗"
	}
	return "•"
}
