// Package memory is an in-process backend, seeded from a JSON file. It is the
// default for local development and the fixture backend of the HTTP tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"mia/internal/core"
	"mia/internal/dates"
	"mia/internal/sheets"
)

// SeedFile is the file NewFromFiles looks for under its base directory.
const SeedFile = "seed.json"

type Store struct {
	mu      sync.Mutex
	profile *core.Profile
	cats    []core.Category
	txs     []core.Transaction
	kinds   map[string]core.IncomeKind
	items   []core.MarketItem
	debts   []core.Debt
	cars    []core.Vehicle
}

// New builds a store from seed. The seed is copied.
func New(seed core.Seed) *Store {
	s := &Store{
		kinds: make(map[string]core.IncomeKind),
		items: append([]core.MarketItem(nil), seed.MarketItems...),
		debts: append([]core.Debt(nil), seed.Debts...),
		cars:  append([]core.Vehicle(nil), seed.Vehicles...),
	}
	if seed.Profile != nil {
		p := *seed.Profile
		s.profile = &p
	}
	for _, c := range seed.Categories {
		s.cats = append(s.cats, c.Normalize())
	}
	for _, st := range seed.Transactions {
		s.txs = append(s.txs, cloneTx(st.Transaction))
		if st.Type == core.Receita {
			s.kinds[st.ID] = st.Kind()
		}
	}
	return s
}

// NewFromFiles loads base/seed.json. A missing file yields a store holding
// only the default categories.
func NewFromFiles(base string) (*Store, error) {
	seed, err := core.ReadSeed(filepath.Join(base, SeedFile))
	if errors.Is(err, os.ErrNotExist) {
		return New(core.Seed{Categories: DefaultCategories()}), nil
	}
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

// DefaultCategories are the categories the dashboard has icons for.
func DefaultCategories() []core.Category {
	def := func(name, color string, t core.TxType) core.Category {
		return core.Category{ID: uuid.NewString(), Name: name, Color: color, Active: true, Type: t}
	}
	return []core.Category{
		def("Salário", "#10B981", core.Receita),
		def("Freelances", "#3B82F6", core.Receita),
		def("Investimentos", "#8B5CF6", core.Receita),
		def("Moradia", "#EF4444", core.Despesa),
		def("Alimentação", "#F59E0B", core.Despesa),
		def("Transporte", "#6B7280", core.Despesa),
	}
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, cloneTx(tx))
	}
	return out, nil
}

func (s *Store) ListMarketItems(_ context.Context) ([]core.MarketItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MarketItem(nil), s.items...), nil
}

func (s *Store) ListDebts(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Debt(nil), s.debts...), nil
}

func (s *Store) ListVehicles(_ context.Context) ([]core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Vehicle(nil), s.cars...), nil
}

func (s *Store) Profile(_ context.Context) (*core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil, nil
	}
	p := *s.profile
	return &p, nil
}

// SetProfile replaces the profile.
func (s *Store) SetProfile(p core.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
}

func (s *Store) ListCategories(_ context.Context, t core.TxType) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.cats))
	for _, c := range s.cats {
		if t == "" || c.Type == "" || c.Type == t {
			out = append(out, c)
		}
	}
	return out, nil
}

// CreateCategory stores c with a fresh id. Names are unique, ignoring case.
func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.cats {
		if strings.EqualFold(existing.Name, c.Name) {
			return core.Category{}, fmt.Errorf("category %q: %w", c.Name, sheets.ErrConflict)
		}
	}
	c.ID = uuid.NewString()
	s.cats = append(s.cats, c)
	return c, nil
}

func (s *Store) GetIncome(_ context.Context, id string) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.incomeIndex(id)
	if i < 0 {
		return core.Income{}, fmt.Errorf("income %q: %w", id, sheets.ErrNotFound)
	}
	return s.income(s.txs[i]), nil
}

// UpdateIncome overwrites the income with in.ID. Last write wins.
func (s *Store) UpdateIncome(_ context.Context, in core.Income) (core.Income, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.incomeIndex(in.ID)
	if i < 0 {
		return core.Income{}, fmt.Errorf("income %q: %w", in.ID, sheets.ErrNotFound)
	}
	s.txs[i] = in.Transaction(s.colorOf(in.Category))
	s.kinds[in.ID] = in.Kind
	return in, nil
}

// AddTransaction appends tx. Used by tests and the seed tooling.
func (s *Store) AddTransaction(tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, cloneTx(tx))
	if tx.Type == core.Receita {
		s.kinds[tx.ID] = core.Variavel
	}
}

func (s *Store) incomeIndex(id string) int {
	for i, tx := range s.txs {
		if tx.ID == id && tx.Type == core.Receita {
			return i
		}
	}
	return -1
}

func (s *Store) income(tx core.Transaction) core.Income {
	kind := s.kinds[tx.ID]
	if kind == "" {
		kind = core.Variavel
	}
	return core.Income{
		ID:          tx.ID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Category:    tx.CategoryName(),
		Date:        string(dates.DateOnly(tx.Date)),
		Kind:        kind,
	}
}

func (s *Store) colorOf(name string) string {
	for _, c := range s.cats {
		if c.Name == name {
			return c.Color
		}
	}
	return ""
}

func cloneTx(tx core.Transaction) core.Transaction {
	if tx.Category != nil {
		c := *tx.Category
		tx.Category = &c
	}
	return tx
}
