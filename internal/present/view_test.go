package present

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mia/internal/aggregate"
	"mia/internal/core"
	"mia/internal/dates"
	"mia/internal/icons"
)

func clock() dates.Clock {
	return dates.FixedClock(time.Date(2024, 3, 20, 12, 0, 0, 0, dates.DefaultLocation), dates.DefaultLocation)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatBRL(t *testing.T) {
	cases := map[string]string{
		"0":          "R$ 0,00",
		"1000":       "R$ 1.000,00",
		"1234.5":     "R$ 1.234,50",
		"1234567.89": "R$ 1.234.567,89",
		"0.005":      "R$ 0,01",
		"-600":       "R$ -600,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatBRL(dec(in)), in)
	}
	assert.Equal(t, "+R$ 10,00", SignedBRL(dec("10"), true))
	assert.Equal(t, "-R$ 10,00", SignedBRL(dec("10"), false))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "40.0%", FormatPercent(dec("40")))
	assert.Equal(t, "33.3%", FormatPercent(dec("33.3333")))
	assert.Equal(t, "0.0%", FormatPercent(decimal.Zero))
}

func TestHealthOf(t *testing.T) {
	cases := []struct {
		ratio  string
		health Health
		text   string
	}{
		{"0", Good, "Bom"},
		{"79.99", Good, "Bom"},
		{"80", Warning, "Regular"},
		{"89.9", Warning, "Regular"},
		{"90", Bad, "Ruim"},
		{"250", Bad, "Ruim"},
	}
	for _, tc := range cases {
		h, text := HealthOf(dec(tc.ratio))
		assert.Equal(t, tc.health, h, tc.ratio)
		assert.Equal(t, tc.text, text, tc.ratio)
	}
}

func TestCardsForMonthExample(t *testing.T) {
	res := aggregate.Result{
		TotalIncome:  dec("1000"),
		TotalExpense: dec("400"),
		Balance:      dec("600"),
		Ratio:        dec("40"),
	}
	cards := Cards(res)
	require.Len(t, cards, 4)

	assert.Equal(t, "Receitas do período", cards[0].Title)
	assert.Equal(t, "R$ 1.000,00", cards[0].Value)
	assert.Equal(t, Positive, cards[0].ChangeType)

	assert.Equal(t, "R$ 400,00", cards[1].Value)
	assert.Equal(t, Neutral, cards[1].ChangeType)

	assert.Equal(t, "R$ 600,00", cards[2].Value)
	assert.Equal(t, "Positivo", cards[2].Change)
	assert.Equal(t, icons.TrendingUp, cards[2].Icon)

	assert.Equal(t, "40.0%", cards[3].Value)
	require.NotNil(t, cards[3].Badge)
	assert.Equal(t, HealthBadge, cards[3].Badge.Label)
	assert.Equal(t, Good, cards[3].Badge.Status)
	assert.Equal(t, icons.TrendingUp, cards[3].Icon)
}

func TestNegativeBalanceCard(t *testing.T) {
	cards := Cards(aggregate.Result{Balance: dec("-50"), Ratio: dec("95")})
	assert.Equal(t, "Negativo", cards[2].Change)
	assert.Equal(t, Negative, cards[2].ChangeType)
	assert.Equal(t, icons.TrendingDown, cards[2].Icon)
	assert.Equal(t, icons.TrendingDown, cards[3].Icon)
	assert.Equal(t, "Ruim", cards[3].Badge.Text)
}

func TestZeroBalanceIsPositive(t *testing.T) {
	cards := Cards(aggregate.Zero())
	assert.Equal(t, "Positivo", cards[2].Change)
	assert.Equal(t, "R$ 0,00", cards[2].Value)
	assert.Equal(t, "0.0%", cards[3].Value)
}

func TestRecentCapsAndMaps(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 7; i++ {
		txs = append(txs, core.Transaction{ID: string(rune('a' + i)), Date: "2024-03-10", Type: core.Despesa, Amount: dec("1")})
	}
	txs[0] = core.Transaction{
		ID:          "sal",
		Description: "Salário março",
		Amount:      dec("5000"),
		Date:        "2024-03-05T09:00:00",
		Type:        core.Receita,
		Category:    &core.CategoryRef{Name: "Salário", Color: "#10B981"},
	}

	items := Recent(txs)
	require.Len(t, items, RecentLimit)

	first := items[0]
	assert.Equal(t, "sal", first.ID)
	assert.Equal(t, "05/03/2024", first.Date)
	assert.Equal(t, "Salário", first.Category)
	assert.Equal(t, icons.ColorPrimary, first.Color)
	assert.Equal(t, "+R$ 5.000,00", first.Amount)
	assert.Equal(t, "income", first.Type)
	assert.Equal(t, icons.DollarSign, first.Icon)

	second := items[1]
	assert.Equal(t, NoCategory, second.Category)
	assert.Equal(t, icons.ColorExpense, second.Color)
	assert.Equal(t, "-R$ 1,00", second.Amount)
	assert.Equal(t, "expense", second.Type)
	assert.Equal(t, icons.TrendingDown, second.Icon)
}

func TestAssembleEmpty(t *testing.T) {
	v := Assemble(aggregate.Zero(), core.PeriodMonth, clock(), Extras{})
	assert.Equal(t, EmptyMessage, v.EmptyMessage)
	assert.Empty(t, v.Recent)
	assert.Equal(t, DefaultUserName, v.UserName)
	assert.Equal(t, "U", v.Initial)
	assert.Equal(t, "Março de 2024", v.PeriodLabel)
	assert.Equal(t, "Últimas Transações - Mês", v.RecentTitle)
	assert.Equal(t, "R$ 0,00", v.OverdueTotal)
	assert.Zero(t, v.Vehicles)
	assert.Empty(t, v.FirstVehicle)
}

func TestAssembleExtras(t *testing.T) {
	ex := Extras{
		MarketItems: []core.MarketItem{
			{Name: "Arroz", Status: core.StockLow},
			{Name: "Feijão", Status: core.StockOut},
			{Name: "Café", Status: "em_estoque"},
		},
		Debts: []core.Debt{
			{Description: "Cartão", Remaining: dec("1200.50"), Status: core.DebtOverdue},
			{Description: "Loja", Remaining: dec("99.50"), Status: core.DebtOverdue},
			{Description: "Carro", Remaining: dec("30000"), Status: "em_dia"},
		},
		Vehicles: []core.Vehicle{{Name: "Gol"}, {Name: "CG 160"}},
		Profile:  &core.Profile{Name: "ana"},
	}
	v := Assemble(aggregate.Zero(), core.PeriodWeek, clock(), ex)

	assert.Equal(t, 2, v.LowStock)
	assert.Equal(t, 2, v.OverdueDebts)
	assert.Equal(t, "R$ 1.300,00", v.OverdueTotal)
	assert.True(t, v.Totals.Overdue.Equal(dec("1300")))
	assert.Equal(t, 2, v.Vehicles)
	assert.Equal(t, "Gol", v.FirstVehicle)
	assert.Equal(t, "ana", v.UserName)
	assert.Equal(t, "A", v.Initial)
	assert.Equal(t, "Semana de 17/03/2024", v.PeriodLabel)

	active := 0
	for _, tab := range v.Periods {
		if tab.Active {
			active++
			assert.Equal(t, core.PeriodWeek, tab.Value)
		}
	}
	assert.Equal(t, 1, active)
}

func TestAssembleDoesNotMutateInputs(t *testing.T) {
	txs := []core.Transaction{{ID: "x", Date: "2024-03-10", Type: core.Receita, Amount: dec("1")}}
	res := aggregate.Result{Transactions: txs, TotalIncome: dec("1"), Balance: dec("1"), Ratio: decimal.Zero}
	Assemble(res, core.PeriodMonth, clock(), Extras{})
	assert.Nil(t, txs[0].Category)
	assert.Equal(t, "2024-03-10", txs[0].Date)
}

func TestViewJSON(t *testing.T) {
	v := Assemble(aggregate.Zero(), core.PeriodDay, clock(), Extras{})
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "dia", m["period"])
	assert.Equal(t, "20/03/2024", m["periodLabel"])
	assert.Len(t, m["stats"], 4)
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "U", Initial(""))
	assert.Equal(t, "U", Initial("   "))
	assert.Equal(t, "É", Initial("élida"))
}
