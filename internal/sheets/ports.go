// Package sheets declares the ports the dashboard and the ledger service read
// from and write to. Backends (memory, SQLite, Google Sheets) implement them.
package sheets

import (
	"context"
	"errors"

	"mia/internal/core"
)

var (
	// ErrLoading means the backend has not finished its first read yet.
	ErrLoading = errors.New("ledger still loading")
	// ErrNotFound is returned when an entry with the given id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with an existing entry.
	ErrConflict = errors.New("already exists")
	// ErrUnsupported is returned by read-only backends on writes.
	ErrUnsupported = errors.New("operation not supported by backend")
)

// Ports for outbound adapters.
type (
	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	MarketItemLister interface {
		ListMarketItems(ctx context.Context) ([]core.MarketItem, error)
	}

	DebtLister interface {
		ListDebts(ctx context.Context) ([]core.Debt, error)
	}

	VehicleLister interface {
		ListVehicles(ctx context.Context) ([]core.Vehicle, error)
	}

	// ProfileReader returns the signed-in user's profile, or nil when none
	// has been set up.
	ProfileReader interface {
		Profile(ctx context.Context) (*core.Profile, error)
	}

	CategoryStore interface {
		// ListCategories returns categories of the given type. An empty type
		// lists every category.
		ListCategories(ctx context.Context, t core.TxType) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	}

	IncomeStore interface {
		GetIncome(ctx context.Context, id string) (core.Income, error)
		UpdateIncome(ctx context.Context, in core.Income) (core.Income, error)
	}
)
