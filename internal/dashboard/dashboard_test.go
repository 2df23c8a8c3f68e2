package dashboard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mia/internal/core"
	"mia/internal/dates"
	"mia/internal/present"
	"mia/internal/sheets"
	"mia/internal/sheets/memory"
)

type countingLister struct {
	txs   []core.Transaction
	err   error
	calls atomic.Int32
}

func (c *countingLister) ListTransactions(context.Context) ([]core.Transaction, error) {
	c.calls.Add(1)
	return c.txs, c.err
}

type failingDebts struct{}

func (failingDebts) ListDebts(context.Context) ([]core.Debt, error) {
	return nil, errors.New("debts service down")
}

func clock() dates.Clock {
	return dates.FixedClock(time.Date(2024, 3, 20, 12, 0, 0, 0, dates.DefaultLocation), dates.DefaultLocation)
}

func ledger() []core.Transaction {
	return []core.Transaction{
		{ID: "a", Description: "Salário", Amount: decimal.NewFromInt(1000), Date: "2024-03-01", Type: core.Receita,
			Category: &core.CategoryRef{Name: "Salário", Color: "#10B981"}},
		{ID: "b", Description: "Aluguel", Amount: decimal.NewFromInt(400), Date: "2024-03-15", Type: core.Despesa},
	}
}

func TestNewRequiresTransactions(t *testing.T) {
	_, err := New(Sources{}, clock(), Options{}, nil)
	assert.Error(t, err)
}

func TestBuildMonth(t *testing.T) {
	store := memory.New(core.Seed{
		Profile:     &core.Profile{Name: "Bia"},
		MarketItems: []core.MarketItem{{Name: "Arroz", Status: core.StockLow}},
		Debts:       []core.Debt{{Remaining: decimal.NewFromInt(50), Status: core.DebtOverdue}},
		Vehicles:    []core.Vehicle{{Name: "Onix"}},
	})
	for _, tx := range ledger() {
		store.AddTransaction(tx)
	}
	svc, err := New(Sources{
		Transactions: store, MarketItems: store, Debts: store, Vehicles: store, Profile: store,
	}, clock(), Options{}, nil)
	require.NoError(t, err)

	v, err := svc.Build(context.Background(), core.PeriodMonth)
	require.NoError(t, err)

	assert.False(t, v.Loading)
	assert.Equal(t, "R$ 1.000,00", v.Cards[0].Value)
	assert.Equal(t, "R$ 400,00", v.Cards[1].Value)
	assert.Equal(t, "R$ 600,00", v.Cards[2].Value)
	assert.Equal(t, "40.0%", v.Cards[3].Value)
	require.Len(t, v.Recent, 2)
	assert.Equal(t, "b", v.Recent[0].ID)
	assert.Equal(t, 1, v.LowStock)
	assert.Equal(t, 1, v.OverdueDebts)
	assert.Equal(t, "R$ 50,00", v.OverdueTotal)
	assert.Equal(t, "Onix", v.FirstVehicle)
	assert.Equal(t, "Bia", v.UserName)
	assert.Equal(t, "B", v.Initial)
}

func TestBuildEmptyDay(t *testing.T) {
	src := &countingLister{txs: ledger()}
	svc, err := New(Sources{Transactions: src}, clock(), Options{}, nil)
	require.NoError(t, err)

	v, err := svc.Build(context.Background(), core.PeriodDay)
	require.NoError(t, err)
	assert.Empty(t, v.Recent)
	assert.Equal(t, present.EmptyMessage, v.EmptyMessage)
	assert.Equal(t, present.DefaultUserName, v.UserName)
}

func TestBuildLoading(t *testing.T) {
	src := &countingLister{err: sheets.ErrLoading}
	svc, err := New(Sources{Transactions: src}, clock(), Options{}, nil)
	require.NoError(t, err)

	v, err := svc.Build(context.Background(), core.PeriodMonth)
	require.NoError(t, err)
	assert.True(t, v.Loading)
	assert.True(t, v.Totals.Income.IsZero())
	assert.Equal(t, int64(0), svc.Aggregator().Computations())
}

func TestBuildFailsOnTransactionError(t *testing.T) {
	src := &countingLister{err: errors.New("db closed")}
	svc, err := New(Sources{Transactions: src}, clock(), Options{}, nil)
	require.NoError(t, err)

	_, err = svc.Build(context.Background(), core.PeriodMonth)
	assert.ErrorContains(t, err, "db closed")
}

func TestBuildToleratesAuxiliaryErrors(t *testing.T) {
	src := &countingLister{txs: ledger()}
	svc, err := New(Sources{Transactions: src, Debts: failingDebts{}}, clock(), Options{}, nil)
	require.NoError(t, err)

	v, err := svc.Build(context.Background(), core.PeriodMonth)
	require.NoError(t, err)
	assert.Zero(t, v.OverdueDebts)
	assert.Equal(t, "R$ 0,00", v.OverdueTotal)
}

func TestSnapshotAndInvalidate(t *testing.T) {
	src := &countingLister{txs: ledger()}
	svc, err := New(Sources{Transactions: src}, clock(), Options{SnapshotTTL: time.Minute}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = svc.Build(ctx, core.PeriodMonth)
	_, _ = svc.Build(ctx, core.PeriodYear)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, int64(2), svc.Aggregator().Computations())

	svc.Invalidate()
	_, _ = svc.Build(ctx, core.PeriodMonth)
	assert.Equal(t, int32(2), src.calls.Load())
	// Same ledger contents: the memoized month result is reused.
	assert.Equal(t, int64(2), svc.Aggregator().Computations())
}

func TestNoSnapshotRefetchesEveryBuild(t *testing.T) {
	src := &countingLister{txs: ledger()}
	svc, err := New(Sources{Transactions: src}, clock(), Options{}, nil)
	require.NoError(t, err)

	_, _ = svc.Build(context.Background(), core.PeriodMonth)
	_, _ = svc.Build(context.Background(), core.PeriodMonth)
	assert.Equal(t, int32(2), src.calls.Load())
	assert.Equal(t, int64(1), svc.Aggregator().Computations())
}
