package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mia/internal/core"
	ports "mia/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{SheetName: "Transacoes"}, nil)
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing spreadsheet id" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_InvalidCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:   "test-id",
		CredentialsJSON: "invalid-json",
	}, nil)
	if err == nil {
		t.Fatal("expected error with invalid JSON")
	}
	if !strings.Contains(err.Error(), "parse service account credentials") {
		t.Errorf("expected credentials error, got: %v", err)
	}
}

func TestCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	t.Run("inline JSON wins", func(t *testing.T) {
		data, err := credentials(Config{CredentialsJSON: `{"a":1}`, CredentialsFile: "/nope"})
		if err != nil || string(data) != `{"a":1}` {
			t.Errorf("credentials() = %q, %v", data, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sa.json")
		if err := os.WriteFile(path, []byte(`{"b":2}`), 0600); err != nil {
			t.Fatal(err)
		}
		data, err := credentials(Config{CredentialsFile: path})
		if err != nil || string(data) != `{"b":2}` {
			t.Errorf("credentials() = %q, %v", data, err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := credentials(Config{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
		if err == nil || !strings.Contains(err.Error(), "read service account file") {
			t.Errorf("expected read error, got %v", err)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := credentials(Config{})
		if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
			t.Errorf("expected missing credentials error, got %v", err)
		}
	})
}

func sheetValues() [][]interface{} {
	return [][]interface{}{
		{"ID", "Data", "Descrição", "Valor", "Tipo", "Categoria", "Cor"},
		{"t1", "2024-03-01", "Salário", 5000.0, "Receita", "Salário", "#10B981"},
		{"t2", "15/03/2024", "Aluguel", "1.500,00", "despesa", "Moradia", ""},
		{"t3", "2024-03-16", "Mercado", "abc", "despesa", "Alimentação"},
	}
}

func TestClient_LoadingUntilFirstRead(t *testing.T) {
	c := newClient(func(context.Context) ([][]interface{}, error) {
		return sheetValues(), nil
	}, time.Hour, nil)
	ctx := context.Background()

	if _, err := c.ListTransactions(ctx); !errors.Is(err, ports.ErrLoading) {
		t.Fatalf("ListTransactions() before refresh error = %v, want ErrLoading", err)
	}
	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	txs, err := c.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2 (bad amount row skipped)", len(txs))
	}
	if txs[1].Date != "2024-03-15" {
		t.Errorf("date = %q, want 2024-03-15", txs[1].Date)
	}
	if !txs[1].Amount.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("amount = %s, want 1500", txs[1].Amount)
	}
}

func TestClient_FailedRefreshKeepsRows(t *testing.T) {
	var fail atomic.Bool
	c := newClient(func(context.Context) ([][]interface{}, error) {
		if fail.Load() {
			return nil, errors.New("quota exceeded")
		}
		return sheetValues(), nil
	}, time.Hour, nil)
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	fail.Store(true)
	if err := c.Refresh(ctx); err == nil {
		t.Fatal("expected refresh error")
	}

	txs, err := c.ListTransactions(ctx)
	if err != nil || len(txs) != 2 {
		t.Errorf("ListTransactions() = %d, %v; want previous rows", len(txs), err)
	}
	if c.LastError() == nil {
		t.Error("LastError() should report the failed read")
	}
}

func TestClient_StartAndClose(t *testing.T) {
	loaded := make(chan struct{})
	var once atomic.Bool
	c := newClient(func(context.Context) ([][]interface{}, error) {
		if once.CompareAndSwap(false, true) {
			defer close(loaded)
		}
		return sheetValues(), nil
	}, time.Hour, nil)

	c.Start(context.Background())
	select {
	case <-loaded:
	case <-time.After(2 * time.Second):
		t.Fatal("sheet was not read after Start")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !c.Loaded() {
		t.Error("client should be loaded after the first read")
	}
}

func TestClient_ReadOnlyPorts(t *testing.T) {
	c := newClient(func(context.Context) ([][]interface{}, error) { return sheetValues(), nil }, time.Hour, nil)
	ctx := context.Background()
	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := c.CreateCategory(ctx, core.Category{Name: "Pets"}); !errors.Is(err, ports.ErrUnsupported) {
		t.Errorf("CreateCategory() error = %v, want ErrUnsupported", err)
	}
	if _, err := c.UpdateIncome(ctx, core.Income{ID: "t1"}); !errors.Is(err, ports.ErrUnsupported) {
		t.Errorf("UpdateIncome() error = %v, want ErrUnsupported", err)
	}

	in, err := c.GetIncome(ctx, "t1")
	if err != nil {
		t.Fatalf("GetIncome() error = %v", err)
	}
	if in.Category != "Salário" || in.Date != "2024-03-01" {
		t.Errorf("GetIncome() = %+v", in)
	}
	if _, err := c.GetIncome(ctx, "t2"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("GetIncome(expense) error = %v, want ErrNotFound", err)
	}

	cats, err := c.ListCategories(ctx, core.Despesa)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || cats[0].Name != "Moradia" || cats[0].Color != core.DefaultCategoryColor {
		t.Errorf("ListCategories(despesa) = %+v", cats)
	}

	items, err := c.ListMarketItems(ctx)
	if err != nil || items != nil {
		t.Errorf("ListMarketItems() = %v, %v", items, err)
	}
}
