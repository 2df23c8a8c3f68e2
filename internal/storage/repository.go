package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mia/internal/core"
	"mia/internal/dates"
	applog "mia/internal/log"
	"mia/internal/sheets"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements every ledger port on top of a SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY between
	// the pool and open transactions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("SQLite ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListTransactions implements sheets.TransactionLister. Rows whose amount
// cannot be parsed are skipped with a warning.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := transactionFromRow(row)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping unreadable transaction", applog.FieldEntityID, row.ID, applog.FieldError, err)
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) ListMarketItems(ctx context.Context) ([]core.MarketItem, error) {
	rows, err := r.queries.ListMarketItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list market items: %w", err)
	}
	out := make([]core.MarketItem, len(rows))
	for i, row := range rows {
		out[i] = core.MarketItem{ID: row.ID, Name: row.Nome, Status: row.Status}
	}
	return out, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.queries.ListDebts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	out := make([]core.Debt, 0, len(rows))
	for _, row := range rows {
		remaining, err := decimal.NewFromString(row.ValorRestante)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping unreadable debt", applog.FieldEntityID, row.ID, applog.FieldError, err)
			continue
		}
		out = append(out, core.Debt{ID: row.ID, Description: row.Descricao, Remaining: remaining, Status: row.Status})
	}
	return out, nil
}

func (r *SQLiteRepository) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	rows, err := r.queries.ListVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	out := make([]core.Vehicle, len(rows))
	for i, row := range rows {
		out[i] = core.Vehicle{ID: row.ID, Name: row.Nome, Plate: row.Placa}
	}
	return out, nil
}

// Profile implements sheets.ProfileReader. No row means no profile.
func (r *SQLiteRepository) Profile(ctx context.Context) (*core.Profile, error) {
	name, err := r.queries.GetProfile(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &core.Profile{Name: name}, nil
}

func (r *SQLiteRepository) SetProfile(ctx context.Context, p core.Profile) error {
	if err := r.queries.UpsertProfile(ctx, strings.TrimSpace(p.Name)); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, t core.TxType) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx, string(t))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, row := range rows {
		out[i] = categoryFromRow(row)
	}
	return out, nil
}

// CreateCategory implements sheets.CategoryStore. Names are unique, ignoring
// case.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	_, err := r.queries.GetCategoryByName(ctx, c.Name)
	switch {
	case err == nil:
		return core.Category{}, fmt.Errorf("category %q: %w", c.Name, sheets.ErrConflict)
	case !errors.Is(err, sql.ErrNoRows):
		return core.Category{}, fmt.Errorf("lookup category: %w", err)
	}

	c.ID = uuid.NewString()
	if err := r.queries.UpsertCategory(ctx, categoryRow(c)); err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("category %q: %w", c.Name, sheets.ErrConflict)
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id string) (core.Income, error) {
	row, err := r.queries.GetIncome(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, fmt.Errorf("income %q: %w", id, sheets.ErrNotFound)
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("get income: %w", err)
	}
	amount, err := decimal.NewFromString(row.Valor)
	if err != nil {
		return core.Income{}, fmt.Errorf("income %q amount: %w", id, err)
	}
	return core.Income{
		ID:          row.ID,
		Description: row.Descricao,
		Amount:      amount,
		Category:    row.CategoriaNome.String,
		Date:        string(dates.DateOnly(row.Data)),
		Kind:        core.IncomeKind(row.Recorrencia),
	}, nil
}

// UpdateIncome implements sheets.IncomeStore. A category name that does not
// exist yet is created as a receita category. Last write wins.
func (r *SQLiteRepository) UpdateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Income{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	catID, err := ensureCategory(ctx, q, in.Category, core.Receita)
	if err != nil {
		return core.Income{}, err
	}

	n, err := q.UpdateIncome(ctx, UpdateIncomeParams{
		Descricao:   in.Description,
		Valor:       in.Amount.String(),
		Data:        in.Date,
		CategoriaID: catID,
		Recorrencia: string(in.Kind),
		ID:          in.ID,
	})
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	if n == 0 {
		return core.Income{}, fmt.Errorf("income %q: %w", in.ID, sheets.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return core.Income{}, fmt.Errorf("commit: %w", err)
	}
	return in, nil
}

// Import upserts a whole seed in one transaction.
func (r *SQLiteRepository) Import(ctx context.Context, seed core.Seed) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	if seed.Profile != nil {
		if err := q.UpsertProfile(ctx, seed.Profile.Name); err != nil {
			return fmt.Errorf("import profile: %w", err)
		}
	}
	for _, c := range seed.Categories {
		c = c.Normalize()
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if existing, err := q.GetCategoryByName(ctx, c.Name); err == nil {
			c.ID = existing.ID
		}
		if err := q.UpsertCategory(ctx, categoryRow(c)); err != nil {
			return fmt.Errorf("import category %q: %w", c.Name, err)
		}
	}
	for _, st := range seed.Transactions {
		if err := st.Validate(); err != nil {
			return fmt.Errorf("import transaction %q: %w", st.ID, err)
		}
		catID, err := ensureCategory(ctx, q, st.CategoryName(), st.Type)
		if err != nil {
			return err
		}
		id := st.ID
		if id == "" {
			id = uuid.NewString()
		}
		if err := q.UpsertTransaction(ctx, UpsertTransactionParams{
			ID:          id,
			Descricao:   st.Description,
			Valor:       st.Amount.String(),
			Data:        st.Date,
			Tipo:        string(st.Type),
			CategoriaID: catID,
			Recorrencia: string(st.Kind()),
		}); err != nil {
			return fmt.Errorf("import transaction %q: %w", id, err)
		}
	}
	for _, it := range seed.MarketItems {
		if err := q.UpsertMarketItem(ctx, MarketItemRow{ID: orNewID(it.ID), Nome: it.Name, Status: it.Status}); err != nil {
			return fmt.Errorf("import market item %q: %w", it.Name, err)
		}
	}
	for _, d := range seed.Debts {
		if err := q.UpsertDebt(ctx, DebtRow{ID: orNewID(d.ID), Descricao: d.Description, ValorRestante: d.Remaining.String(), Status: d.Status}); err != nil {
			return fmt.Errorf("import debt %q: %w", d.Description, err)
		}
	}
	for _, v := range seed.Vehicles {
		if err := q.UpsertVehicle(ctx, VehicleRow{ID: orNewID(v.ID), Nome: v.Name, Placa: v.Plate}); err != nil {
			return fmt.Errorf("import vehicle %q: %w", v.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.InfoContext(ctx, "Seed imported",
		applog.FieldTxCount, len(seed.Transactions),
		"categories", len(seed.Categories))
	return nil
}

// ensureCategory returns the id of the named category, creating it when
// missing. An empty name maps to NULL.
func ensureCategory(ctx context.Context, q *Queries, name string, t core.TxType) (sql.NullString, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return sql.NullString{}, nil
	}
	row, err := q.GetCategoryByName(ctx, name)
	if err == nil {
		return sql.NullString{String: row.ID, Valid: true}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return sql.NullString{}, fmt.Errorf("lookup category: %w", err)
	}
	c := core.Category{ID: uuid.NewString(), Name: name, Active: true, Type: t}.Normalize()
	if err := q.UpsertCategory(ctx, categoryRow(c)); err != nil {
		return sql.NullString{}, fmt.Errorf("create category %q: %w", name, err)
	}
	return sql.NullString{String: c.ID, Valid: true}, nil
}

func transactionFromRow(row TransactionRow) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Valor)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", row.Valor, err)
	}
	tx := core.Transaction{
		ID:          row.ID,
		Description: row.Descricao,
		Amount:      amount,
		Date:        row.Data,
		Type:        core.TxType(row.Tipo),
	}
	if row.CategoriaNome.Valid {
		tx.Category = &core.CategoryRef{Name: row.CategoriaNome.String, Color: row.CategoriaCor.String}
	}
	return tx, nil
}

func categoryFromRow(row CategoryRow) core.Category {
	return core.Category{
		ID:          row.ID,
		Name:        row.Nome,
		Description: row.Descricao,
		Color:       row.Cor,
		Active:      row.Ativa,
		Type:        core.TxType(row.Tipo),
	}
}

func categoryRow(c core.Category) CategoryRow {
	return CategoryRow{
		ID:        c.ID,
		Nome:      c.Name,
		Descricao: c.Description,
		Cor:       c.Color,
		Ativa:     c.Active,
		Tipo:      string(c.Type),
	}
}

func dsn(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
