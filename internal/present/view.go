// Package present turns an aggregation result and the auxiliary collections
// into the strings and flags the dashboard renders. Nothing here mutates its
// inputs.
package present

import (
	"github.com/shopspring/decimal"

	"mia/internal/aggregate"
	"mia/internal/core"
	"mia/internal/dates"
	"mia/internal/icons"
)

const (
	// RecentLimit caps the recent transactions list.
	RecentLimit = 5

	EmptyMessage    = "Nenhuma transação encontrada para o período selecionado."
	NoCategory      = "Sem categoria"
	DefaultUserName = "Usuário"
	HealthBadge     = "Saúde Financeira"
)

// Thresholds of the expense/income health badge, in percent.
var (
	goodBelow    = decimal.NewFromInt(80)
	warningBelow = decimal.NewFromInt(90)
)

type ChangeType string

const (
	Positive ChangeType = "positive"
	Negative ChangeType = "negative"
	Neutral  ChangeType = "neutral"
)

type Health string

const (
	Good    Health = "good"
	Warning Health = "warning"
	Bad     Health = "bad"
)

type (
	Badge struct {
		Label  string `json:"label"`
		Status Health `json:"status"`
		Text   string `json:"text"`
	}

	StatCard struct {
		Title      string     `json:"title"`
		Value      string     `json:"value"`
		Change     string     `json:"change,omitempty"`
		ChangeType ChangeType `json:"changeType"`
		Icon       icons.Icon `json:"icon"`
		Badge      *Badge     `json:"badge,omitempty"`
	}

	RecentItem struct {
		ID          string     `json:"id"`
		Description string     `json:"description"`
		Date        string     `json:"date"`
		Category    string     `json:"category"`
		Color       string     `json:"categoryColor"`
		Amount      string     `json:"amount"`
		Type        string     `json:"type"`
		Icon        icons.Icon `json:"icon"`
	}

	// Extras are the non-transaction collections shown on the dashboard.
	Extras struct {
		MarketItems []core.MarketItem
		Debts       []core.Debt
		Vehicles    []core.Vehicle
		Profile     *core.Profile
	}

	View struct {
		Period       core.Period  `json:"period"`
		PeriodLabel  string       `json:"periodLabel"`
		Loading      bool         `json:"loading"`
		UserName     string       `json:"userName"`
		Initial      string       `json:"initial"`
		Cards        []StatCard   `json:"stats"`
		RecentTitle  string       `json:"recentTitle"`
		Recent       []RecentItem `json:"recent"`
		EmptyMessage string       `json:"emptyMessage,omitempty"`
		LowStock     int          `json:"lowStockCount"`
		OverdueDebts int          `json:"overdueDebtCount"`
		OverdueTotal string       `json:"overdueDebtTotal"`
		Vehicles     int          `json:"vehicleCount"`
		FirstVehicle string       `json:"firstVehicle,omitempty"`
		Totals       Totals       `json:"totals"`
		Periods      []PeriodTab  `json:"periods"`
	}

	// Totals carries the raw numbers behind the cards.
	Totals struct {
		Income  decimal.Decimal `json:"totalIncome"`
		Expense decimal.Decimal `json:"totalExpense"`
		Balance decimal.Decimal `json:"periodBalance"`
		Ratio   decimal.Decimal `json:"expenseToIncomeRatio"`
		Overdue decimal.Decimal `json:"overdueDebtTotal"`
	}

	PeriodTab struct {
		Value  core.Period `json:"value"`
		Title  string      `json:"title"`
		Active bool        `json:"active"`
	}
)

// Assemble projects res and the extras onto the dashboard view for period p.
func Assemble(res aggregate.Result, p core.Period, clock dates.Clock, ex Extras) View {
	v := View{
		Period:      p,
		PeriodLabel: clock.PeriodLabel(p),
		UserName:    DefaultUserName,
		Initial:     "U",
		Cards:       Cards(res),
		RecentTitle: "Últimas Transações - " + p.Title(),
		Recent:      Recent(res.Transactions),
		Periods:     Tabs(p),
		Totals: Totals{
			Income:  res.TotalIncome,
			Expense: res.TotalExpense,
			Balance: res.Balance,
			Ratio:   res.Ratio,
		},
	}
	if len(v.Recent) == 0 {
		v.EmptyMessage = EmptyMessage
	}
	if ex.Profile != nil && ex.Profile.Name != "" {
		v.UserName = ex.Profile.Name
		v.Initial = Initial(ex.Profile.Name)
	}

	v.LowStock = LowStock(ex.MarketItems)
	v.OverdueDebts, v.Totals.Overdue = Overdue(ex.Debts)
	v.OverdueTotal = FormatBRL(v.Totals.Overdue)
	v.Vehicles = len(ex.Vehicles)
	if len(ex.Vehicles) > 0 {
		v.FirstVehicle = ex.Vehicles[0].Name
	}
	return v
}

// Cards builds the four summary cards.
func Cards(res aggregate.Result) []StatCard {
	balance := StatCard{
		Title:      "Saldo do período",
		Value:      FormatBRL(res.Balance),
		Change:     "Positivo",
		ChangeType: Positive,
		Icon:       icons.TrendingUp,
	}
	if res.Balance.IsNegative() {
		balance.Change = "Negativo"
		balance.ChangeType = Negative
		balance.Icon = icons.TrendingDown
	}

	health, text := HealthOf(res.Ratio)
	ratioIcon := icons.TrendingDown
	if health == Good {
		ratioIcon = icons.TrendingUp
	}

	return []StatCard{
		{
			Title:      "Receitas do período",
			Value:      FormatBRL(res.TotalIncome),
			ChangeType: Positive,
			Icon:       icons.TrendingUp,
		},
		{
			Title:      "Despesas do período",
			Value:      FormatBRL(res.TotalExpense),
			ChangeType: Neutral,
			Icon:       icons.TrendingDown,
		},
		balance,
		{
			Title:      "Despesas/Receitas",
			Value:      FormatPercent(res.Ratio),
			ChangeType: Neutral,
			Icon:       ratioIcon,
			Badge:      &Badge{Label: HealthBadge, Status: health, Text: text},
		},
	}
}

// HealthOf grades an expense/income ratio.
func HealthOf(ratio decimal.Decimal) (Health, string) {
	switch {
	case ratio.LessThan(goodBelow):
		return Good, "Bom"
	case ratio.LessThan(warningBelow):
		return Warning, "Regular"
	}
	return Bad, "Ruim"
}

// Recent maps the first RecentLimit transactions to list rows.
func Recent(txs []core.Transaction) []RecentItem {
	n := min(len(txs), RecentLimit)
	out := make([]RecentItem, 0, n)
	for _, tx := range txs[:n] {
		category := tx.CategoryName()
		label := category
		if label == "" {
			label = NoCategory
		}
		typ := "expense"
		if tx.IsIncome() {
			typ = "income"
		}
		out = append(out, RecentItem{
			ID:          tx.ID,
			Description: tx.Description,
			Date:        dates.Format(tx.Date),
			Category:    label,
			Color:       icons.ResolveColor(tx.Category, tx.Type),
			Amount:      SignedBRL(tx.Amount, tx.IsIncome()),
			Type:        typ,
			Icon:        icons.Resolve(category, tx.Type),
		})
	}
	return out
}

// LowStock counts market items that are low on or out of stock.
func LowStock(items []core.MarketItem) int {
	n := 0
	for _, it := range items {
		if it.Status == core.StockLow || it.Status == core.StockOut {
			n++
		}
	}
	return n
}

// Overdue counts overdue debts and sums what is left to pay on them.
func Overdue(debts []core.Debt) (int, decimal.Decimal) {
	n, total := 0, decimal.Zero
	for _, d := range debts {
		if d.Status == core.DebtOverdue {
			n++
			total = total.Add(d.Remaining)
		}
	}
	return n, total
}

// Tabs lists the period selector with p marked active.
func Tabs(p core.Period) []PeriodTab {
	out := make([]PeriodTab, 0, 4)
	for _, q := range core.Periods() {
		out = append(out, PeriodTab{Value: q, Title: q.Title(), Active: q == p})
	}
	return out
}
