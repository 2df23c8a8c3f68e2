package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Receita TxType = "receita"
	Despesa TxType = "despesa"
)

const (
	Fixa     IncomeKind = "fixa"
	Variavel IncomeKind = "variavel"
)

// Statuses the dashboard reacts to. Any other value is carried through untouched.
const (
	StockLow    = "estoque_baixo"
	StockOut    = "sem_estoque"
	DebtOverdue = "vencida"
)

// DefaultCategoryColor is the first entry of CategoryPalette.
const DefaultCategoryColor = "#10B981"

// CategoryPalette lists the swatches offered by the category form.
var CategoryPalette = []string{
	"#10B981", "#3B82F6", "#8B5CF6", "#EF4444", "#F59E0B",
	"#DC2626", "#6B7280", "#EC4899", "#059669", "#FF6B35",
}

type (
	// TxType tells income and expense apart.
	TxType string

	// IncomeKind is the recurrence flag of an income record.
	IncomeKind string

	CategoryRef struct {
		Name  string `json:"nome"`
		Color string `json:"cor,omitempty"`
	}

	// Transaction is a ledger entry as delivered by the data layer. Date is kept
	// raw (YYYY-MM-DD, optionally followed by a time part) because ordering is
	// done on the raw value.
	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"descricao"`
		Amount      decimal.Decimal `json:"valor"`
		Date        string          `json:"data"`
		Type        TxType          `json:"tipo"`
		Category    *CategoryRef    `json:"categorias,omitempty"`
	}

	MarketItem struct {
		ID     string `json:"id"`
		Name   string `json:"nome"`
		Status string `json:"status"`
	}

	Debt struct {
		ID          string          `json:"id"`
		Description string          `json:"descricao"`
		Remaining   decimal.Decimal `json:"valor_restante"`
		Status      string          `json:"status"`
	}

	Vehicle struct {
		ID    string `json:"id"`
		Name  string `json:"nome"`
		Plate string `json:"placa,omitempty"`
	}

	Profile struct {
		Name string `json:"name"`
	}

	// Category is a user-defined label for transactions or market items.
	Category struct {
		ID          string `json:"id"`
		Name        string `json:"nome"`
		Description string `json:"descricao"`
		Color       string `json:"cor"`
		Active      bool   `json:"ativa"`
		Type        TxType `json:"tipo,omitempty"`
	}

	// Income is the editable view of a receita transaction.
	Income struct {
		ID          string          `json:"id"`
		Description string          `json:"descricao"`
		Amount      decimal.Decimal `json:"valor"`
		Category    string          `json:"categoria"`
		Date        string          `json:"data"`
		Kind        IncomeKind      `json:"tipo"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty category name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidColor     = errors.New("invalid color")
	ErrInvalidKind      = errors.New("invalid income kind")
	ErrInvalidType      = errors.New("invalid transaction type")
)

func (t TxType) Valid() bool {
	return t == Receita || t == Despesa
}

// IsIncome reports whether the transaction counts towards income totals.
func (t Transaction) IsIncome() bool { return t.Type == Receita }

// IsExpense reports whether the transaction counts towards expense totals.
func (t Transaction) IsExpense() bool { return t.Type == Despesa }

// CategoryName returns the attached category name, or "" when there is none.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if _, err := time.Parse("2006-01-02", dateOnly(t.Date)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Normalize trims the free-text fields and fills the form defaults.
func (c Category) Normalize() Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.Color = strings.TrimSpace(c.Color)
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	return c
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	if c.Color != "" && !isHexColor(c.Color) {
		return ErrInvalidColor
	}
	if c.Type != "" && !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// Normalize trims the free-text fields and defaults the kind to variavel.
func (i Income) Normalize() Income {
	i.Description = strings.TrimSpace(i.Description)
	i.Category = strings.TrimSpace(i.Category)
	i.Date = strings.TrimSpace(i.Date)
	if i.Kind == "" {
		i.Kind = Variavel
	}
	return i
}

func (i Income) Validate() error {
	if strings.TrimSpace(i.Description) == "" {
		return ErrEmptyDescription
	}
	if len(i.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !i.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(i.Category) == "" {
		return ErrEmptyCategory
	}
	if _, err := time.Parse("2006-01-02", i.Date); err != nil {
		return ErrInvalidDate
	}
	switch i.Kind {
	case Fixa, Variavel:
	default:
		return ErrInvalidKind
	}
	return nil
}

// Transaction converts the income into the ledger entry it edits.
func (i Income) Transaction(color string) Transaction {
	tx := Transaction{
		ID:          i.ID,
		Description: i.Description,
		Amount:      i.Amount,
		Date:        i.Date,
		Type:        Receita,
	}
	if i.Category != "" {
		tx.Category = &CategoryRef{Name: i.Category, Color: color}
	}
	return tx
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func dateOnly(raw string) string {
	if i := strings.IndexAny(raw, "T "); i >= 0 {
		return raw[:i]
	}
	return raw
}
