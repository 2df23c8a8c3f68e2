// Package services holds the write side of the dashboard: category creation
// and income edits, followed by change notification.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"mia/internal/amqp"
	"mia/internal/core"
	applog "mia/internal/log"
	"mia/internal/sheets"
)

// ErrValidation wraps every input error so transports can map it to a
// single status.
var ErrValidation = errors.New("validation failed")

// EventPublisher is implemented by *amqp.Client.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService validates writes, persists them through the store ports and
// then tells the rest of the process that the ledger changed.
type LedgerService struct {
	categories sheets.CategoryStore
	incomes    sheets.IncomeStore
	publisher  EventPublisher
	onChange   []func()
	logger     *applog.Logger
	structured *applog.StructuredLogger
}

func NewLedgerService(categories sheets.CategoryStore, incomes sheets.IncomeStore, publisher EventPublisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &LedgerService{
		categories: categories,
		incomes:    incomes,
		publisher:  publisher,
		logger:     logger.WithComponent(applog.ComponentLedger),
		structured: applog.NewStructuredLogger(logger),
	}
}

// OnChange registers fn to run after every successful write.
func (s *LedgerService) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *LedgerService) ListCategories(ctx context.Context, t core.TxType) ([]core.Category, error) {
	if t != "" && !t.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrValidation, core.ErrInvalidType)
	}
	return s.categories.ListCategories(ctx, t)
}

// CreateCategory trims and validates c, stores it and publishes
// category.created.
func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	created, err := s.categories.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.structured.LogLedgerWrite(ctx, applog.OpCreate, "category", created.ID, created.Name, decimal.Zero)
	s.changed(ctx, amqp.KindCategoryCreated, created.ID)
	return created, nil
}

func (s *LedgerService) GetIncome(ctx context.Context, id string) (core.Income, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Income{}, fmt.Errorf("income %q: %w", id, sheets.ErrNotFound)
	}
	return s.incomes.GetIncome(ctx, id)
}

// UpdateIncome overwrites the income with in.ID and publishes income.updated.
func (s *LedgerService) UpdateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Income{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	updated, err := s.incomes.UpdateIncome(ctx, in)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	s.structured.LogLedgerWrite(ctx, applog.OpUpdate, "income", updated.ID, updated.Description, updated.Amount)
	s.changed(ctx, amqp.KindIncomeUpdated, updated.ID)
	return updated, nil
}

// changed runs the local callbacks and publishes the event. A failed publish
// does not fail the write; the entry is already stored.
func (s *LedgerService) changed(ctx context.Context, kind, id string) {
	for _, fn := range s.onChange {
		fn()
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event", applog.FieldEntityKind, kind)
		return
	}
	if err := s.publisher.Publish(ctx, amqp.NewLedgerEvent(kind, id)); err != nil {
		s.structured.LogError(ctx, "Failed to publish ledger event", err,
			applog.ComponentAMQP, applog.OpPublish,
			applog.NewFields().WithEntry(kind, id, "", decimal.Zero))
	}
}

// Close closes the publisher when it holds a connection.
func (s *LedgerService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
