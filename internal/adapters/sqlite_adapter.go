// Package adapters moves whole ledgers between backends, e.g. a Google
// Sheet or seed directory into the SQLite database.
package adapters

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"mia/internal/backend"
	"mia/internal/core"
	applog "mia/internal/log"
	"mia/internal/sheets"
)

// Importer is implemented by *storage.SQLiteRepository.
type Importer interface {
	Import(ctx context.Context, seed core.Seed) error
}

// SQLiteAdapter copies any backend into the SQLite repository.
type SQLiteAdapter struct {
	storage Importer
	logger  *applog.Logger
}

func NewSQLiteAdapter(storage Importer, logger *applog.Logger) *SQLiteAdapter {
	if logger == nil {
		logger = applog.Discard()
	}
	return &SQLiteAdapter{
		storage: storage,
		logger:  logger.WithComponent(applog.ComponentStorage),
	}
}

// ImportFrom reads every collection of src and upserts it into SQLite in a
// single transaction.
func (a *SQLiteAdapter) ImportFrom(ctx context.Context, src backend.Backend) (core.Seed, error) {
	seed, err := Export(ctx, src)
	if err != nil {
		return core.Seed{}, err
	}
	if err := a.storage.Import(ctx, seed); err != nil {
		return core.Seed{}, fmt.Errorf("import into sqlite: %w", err)
	}
	a.logger.InfoContext(ctx, "Ledger copied into SQLite",
		applog.FieldTxCount, len(seed.Transactions),
		"categories", len(seed.Categories))
	return seed, nil
}

// Export snapshots a backend as a seed document. Income recurrence is read
// through the income port; backends that cannot answer leave it empty.
func Export(ctx context.Context, src backend.Backend) (core.Seed, error) {
	var seed core.Seed
	var txs []core.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = src.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		seed.Categories, err = src.ListCategories(gctx, "")
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		seed.MarketItems, err = src.ListMarketItems(gctx)
		if err != nil {
			return fmt.Errorf("list market items: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		seed.Debts, err = src.ListDebts(gctx)
		if err != nil {
			return fmt.Errorf("list debts: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		seed.Vehicles, err = src.ListVehicles(gctx)
		if err != nil {
			return fmt.Errorf("list vehicles: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		seed.Profile, err = src.Profile(gctx)
		if err != nil {
			return fmt.Errorf("read profile: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Seed{}, err
	}

	seed.Transactions = make([]core.SeedTransaction, 0, len(txs))
	for _, tx := range txs {
		st := core.SeedTransaction{Transaction: tx}
		if tx.IsIncome() {
			in, err := src.GetIncome(ctx, tx.ID)
			switch {
			case err == nil:
				st.Recurrence = in.Kind
			case errors.Is(err, sheets.ErrNotFound):
			default:
				return core.Seed{}, fmt.Errorf("read income %q: %w", tx.ID, err)
			}
		}
		seed.Transactions = append(seed.Transactions, st)
	}
	return seed, nil
}
