// Package dashboard composes the collection providers, the memoized
// aggregator and the presentation assembler into the dashboard view.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"mia/internal/aggregate"
	"mia/internal/cache"
	"mia/internal/core"
	"mia/internal/dates"
	applog "mia/internal/log"
	"mia/internal/present"
	"mia/internal/sheets"
)

const snapshotKey = "transactions"

// Sources are the providers the dashboard reads. Only Transactions is
// required; a nil auxiliary provider reads as an empty collection.
type Sources struct {
	Transactions sheets.TransactionLister
	MarketItems  sheets.MarketItemLister
	Debts        sheets.DebtLister
	Vehicles     sheets.VehicleLister
	Profile      sheets.ProfileReader
}

type Options struct {
	// MemoSize bounds the memoized aggregation results.
	MemoSize int
	// SnapshotTTL is how long a fetched transaction list is reused. Zero
	// disables the snapshot.
	SnapshotTTL time.Duration
}

type Service struct {
	src      Sources
	clock    dates.Clock
	agg      *aggregate.Aggregator
	snapshot *cache.LRUCache[[]core.Transaction]
	ttl      time.Duration
	logger   *applog.Logger
}

func New(src Sources, clock dates.Clock, opts Options, logger *applog.Logger) (*Service, error) {
	if src.Transactions == nil {
		return nil, errors.New("dashboard: transaction provider is required")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Service{
		src:      src,
		clock:    clock,
		agg:      aggregate.NewAggregator(clock, opts.MemoSize, logger),
		snapshot: cache.NewLRUCache[[]core.Transaction](1, opts.SnapshotTTL),
		ttl:      opts.SnapshotTTL,
		logger:   logger.WithComponent(applog.ComponentDashboard),
	}, nil
}

// Build fetches every collection concurrently and assembles the view for
// period p. A transaction provider failure fails the build; while the
// provider is still loading the view carries zero totals and Loading set.
// Auxiliary failures are logged and read as empty collections.
func (s *Service) Build(ctx context.Context, p core.Period) (present.View, error) {
	var (
		txs     []core.Transaction
		loading bool
		ex      present.Extras
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.transactions(gctx)
		switch {
		case errors.Is(err, sheets.ErrLoading):
			loading = true
			return nil
		case err != nil:
			return fmt.Errorf("list transactions: %w", err)
		}
		txs = list
		return nil
	})
	if s.src.MarketItems != nil {
		g.Go(func() error {
			ex.MarketItems = auxiliary(gctx, s.logger, "market items", s.src.MarketItems.ListMarketItems)
			return nil
		})
	}
	if s.src.Debts != nil {
		g.Go(func() error {
			ex.Debts = auxiliary(gctx, s.logger, "debts", s.src.Debts.ListDebts)
			return nil
		})
	}
	if s.src.Vehicles != nil {
		g.Go(func() error {
			ex.Vehicles = auxiliary(gctx, s.logger, "vehicles", s.src.Vehicles.ListVehicles)
			return nil
		})
	}
	if s.src.Profile != nil {
		g.Go(func() error {
			prof, err := s.src.Profile.Profile(gctx)
			if err != nil {
				s.logger.WarnContext(gctx, "Profile unavailable", applog.FieldError, err)
				return nil
			}
			ex.Profile = prof
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return present.View{}, err
	}

	clock := s.clock.Freeze()
	res := s.agg.ComputeAt(aggregate.Input{Transactions: txs, Loading: loading}, p, clock)
	v := present.Assemble(res, p, clock, ex)
	v.Loading = loading
	return v, nil
}

func (s *Service) transactions(ctx context.Context) ([]core.Transaction, error) {
	if s.ttl > 0 {
		if txs, ok := s.snapshot.Get(snapshotKey); ok {
			return txs, nil
		}
	}
	txs, err := s.src.Transactions.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		s.snapshot.Set(snapshotKey, txs)
	}
	return txs, nil
}

// Invalidate drops the transaction snapshot so the next build refetches.
// Memoized aggregations stay valid: they are keyed on the ledger contents.
func (s *Service) Invalidate() {
	if n := s.snapshot.Purge(); n > 0 {
		s.logger.Debug("Transaction snapshot invalidated")
	}
}

// Aggregator exposes the memoized aggregator, mainly for cache registration.
func (s *Service) Aggregator() *aggregate.Aggregator { return s.agg }

// Snapshot exposes the snapshot cache for cleanup registration.
func (s *Service) Snapshot() *cache.LRUCache[[]core.Transaction] { return s.snapshot }

func auxiliary[T any](ctx context.Context, logger *applog.Logger, what string, list func(context.Context) ([]T, error)) []T {
	items, err := list(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Auxiliary collection unavailable", "collection", what, applog.FieldError, err)
		return nil
	}
	return items
}
