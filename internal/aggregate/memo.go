package aggregate

import (
	"hash/fnv"
	"strconv"
	"sync/atomic"

	"mia/internal/cache"
	"mia/internal/core"
	"mia/internal/dates"
	applog "mia/internal/log"
)

// DefaultMemoSize bounds the number of memoized results.
const DefaultMemoSize = 64

// Input is what the dashboard knows about the ledger at render time.
type Input struct {
	Transactions []core.Transaction
	Loading      bool
}

// Aggregator memoizes Aggregate on (period, today, transaction fingerprint).
// Changes to anything else never trigger a recomputation. Returned results
// are shared between callers and must be treated as read-only.
type Aggregator struct {
	clock        dates.Clock
	memo         *cache.LRUCache[Result]
	logger       *applog.Logger
	computations atomic.Int64
}

// NewAggregator creates an Aggregator holding at most size results.
func NewAggregator(clock dates.Clock, size int, logger *applog.Logger) *Aggregator {
	if size <= 0 {
		size = DefaultMemoSize
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Aggregator{
		clock: clock,
		// The key carries today's date, so entries never go stale by age.
		memo:   cache.NewLRUCache[Result](size, 0),
		logger: logger.WithComponent(applog.ComponentAggregate),
	}
}

// Compute returns the aggregation of in for period p. While the ledger is
// still loading the zero result is returned and nothing is memoized.
func (a *Aggregator) Compute(in Input, p core.Period) Result {
	return a.ComputeAt(in, p, a.clock)
}

// ComputeAt is Compute with an explicit clock.
func (a *Aggregator) ComputeAt(in Input, p core.Period, clock dates.Clock) Result {
	if in.Loading {
		return Zero()
	}

	clock = clock.Freeze()
	today := clock.Today()
	key := MemoKey(p, today, in.Transactions)
	if r, ok := a.memo.Get(key); ok {
		return r
	}

	r := Aggregate(in.Transactions, p, clock)
	a.computations.Add(1)
	a.memo.Set(key, r)
	a.logger.Debug("Aggregation computed",
		applog.FieldPeriod, string(p),
		applog.FieldToday, string(today),
		applog.FieldTxCount, len(in.Transactions))
	return r
}

// Computations reports how many aggregations actually ran.
func (a *Aggregator) Computations() int64 { return a.computations.Load() }

// Reset drops every memoized result.
func (a *Aggregator) Reset() int { return a.memo.Purge() }

// Cache exposes the memo for periodic cleanup registration.
func (a *Aggregator) Cache() *cache.LRUCache[Result] { return a.memo }

// MemoKey identifies an aggregation request.
func MemoKey(p core.Period, today dates.DateKey, txs []core.Transaction) string {
	return string(p) + "|" + string(today) + "|" + Fingerprint(txs)
}

// Fingerprint hashes every field of txs that can influence an aggregation or
// its presentation. Order matters.
func Fingerprint(txs []core.Transaction) string {
	h := fnv.New64a()
	field := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0x1f})
	}
	for _, tx := range txs {
		field(tx.ID)
		field(tx.Description)
		field(tx.Amount.String())
		field(tx.Date)
		field(string(tx.Type))
		if tx.Category != nil {
			field(tx.Category.Name)
			field(tx.Category.Color)
		} else {
			field("\x00")
		}
		h.Write([]byte{0x1e})
	}
	return strconv.Itoa(len(txs)) + ":" + strconv.FormatUint(h.Sum64(), 16)
}
