// Package aggregate filters a transaction list down to a dashboard period and
// derives the period totals from what is left.
package aggregate

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"mia/internal/core"
	"mia/internal/dates"
)

var hundred = decimal.NewFromInt(100)

// Result is the projection of a transaction list onto a period. It is never
// persisted. Transactions are ordered by raw date, newest first.
type Result struct {
	Transactions []core.Transaction `json:"filteredTransactions"`
	TotalIncome  decimal.Decimal    `json:"totalIncome"`
	TotalExpense decimal.Decimal    `json:"totalExpense"`
	Balance      decimal.Decimal    `json:"periodBalance"`
	// Ratio is expenses as a percentage of income, 0 when there is no income.
	Ratio decimal.Decimal `json:"expenseToIncomeRatio"`
}

// Zero is the result of aggregating nothing.
func Zero() Result {
	return Result{
		Transactions: []core.Transaction{},
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Balance:      decimal.Zero,
		Ratio:        decimal.Zero,
	}
}

// Empty reports whether no transaction fell inside the period.
func (r Result) Empty() bool { return len(r.Transactions) == 0 }

// Aggregate keeps the transactions whose date falls inside period p (as seen
// from clock) and sums them. Unknown periods keep everything. The input slice
// is not modified.
func Aggregate(txs []core.Transaction, p core.Period, clock dates.Clock) Result {
	if len(txs) == 0 {
		return Zero()
	}

	keep := Filter(p, clock.Freeze())
	res := Zero()
	for _, tx := range txs {
		if !keep(dates.DateOnly(tx.Date)) {
			continue
		}
		res.Transactions = append(res.Transactions, tx)
		switch tx.Type {
		case core.Receita:
			res.TotalIncome = res.TotalIncome.Add(tx.Amount)
		case core.Despesa:
			res.TotalExpense = res.TotalExpense.Add(tx.Amount)
		}
	}

	res.Balance = res.TotalIncome.Sub(res.TotalExpense)
	res.Ratio = Ratio(res.TotalExpense, res.TotalIncome)

	slices.SortStableFunc(res.Transactions, func(a, b core.Transaction) int {
		return strings.Compare(b.Date, a.Date)
	})
	return res
}

// Ratio returns expense/income*100, or 0 when income is not positive.
func Ratio(expense, income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return expense.Div(income).Mul(hundred)
}

// Filter returns the date predicate of period p. The lower bound is computed
// once, here. Week, month and year have no upper bound.
func Filter(p core.Period, clock dates.Clock) func(dates.DateKey) bool {
	switch p {
	case core.PeriodDay:
		today := clock.Today()
		return func(d dates.DateKey) bool { return d == today }
	case core.PeriodWeek:
		return since(clock.StartOfWeek())
	case core.PeriodMonth:
		return since(clock.StartOfMonth())
	case core.PeriodYear:
		return since(clock.StartOfYear())
	}
	return func(dates.DateKey) bool { return true }
}

func since(bound dates.DateKey) func(dates.DateKey) bool {
	return func(d dates.DateKey) bool { return d >= bound }
}
