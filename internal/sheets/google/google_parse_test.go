package google

import (
	"testing"

	"github.com/shopspring/decimal"

	"mia/internal/core"
)

func TestParseTransactions_WithHeader(t *testing.T) {
	values := [][]interface{}{
		{"Descrição", "Data", "Valor", "Tipo", "Categoria"},
		{"Salário", "2024-03-01", 5000.0, "receita", "Salário"},
		{"Freela", "2024-03-05T10:00:00", "R$ 1.200,50", "RECEITA", ""},
		{},
		{"Jantar", "2024-03-10", "-30", "despesa", "Alimentação"},
		{"Taxi", "2024-03-11", "25", "saida", "Transporte"},
		{"Sem data", "", "10", "despesa", ""},
	}

	txs, skipped := parseTransactions(values)

	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2: %+v", len(txs), txs)
	}
	if txs[0].ID != "row-2" || txs[0].Type != core.Receita || txs[0].CategoryName() != "Salário" {
		t.Errorf("first = %+v", txs[0])
	}
	if !txs[1].Amount.Equal(decimal.RequireFromString("1200.50")) {
		t.Errorf("amount = %s, want 1200.50", txs[1].Amount)
	}
	if txs[1].Category != nil {
		t.Errorf("empty category should stay nil, got %+v", txs[1].Category)
	}
	if txs[1].Date != "2024-03-05T10:00:00" {
		t.Errorf("date with time part should be kept raw, got %q", txs[1].Date)
	}

	if len(skipped) != 3 {
		t.Fatalf("got %d skipped rows, want 3: %v", len(skipped), skipped)
	}
	wantRows := []int{5, 6, 7}
	for i, row := range wantRows {
		if skipped[i].Row != row {
			t.Errorf("skipped[%d].Row = %d, want %d", i, skipped[i].Row, row)
		}
	}
}

func TestParseTransactions_DefaultLayout(t *testing.T) {
	values := [][]interface{}{
		{"2024-03-01", "Salário", "1000", "receita", "Salário"},
		{"2024-03-15", "Aluguel", "400", "despesa", "Moradia"},
	}

	txs, skipped := parseTransactions(values)

	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped rows: %v", skipped)
	}
	if len(txs) != 2 || txs[0].ID != "row-1" || txs[1].Description != "Aluguel" {
		t.Errorf("transactions = %+v", txs)
	}
}

func TestParseTransactions_Empty(t *testing.T) {
	txs, skipped := parseTransactions(nil)
	if txs != nil || skipped != nil {
		t.Errorf("parseTransactions(nil) = %v, %v", txs, skipped)
	}
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Descrição":  "descricao",
		"  VALOR ":   "valor",
		"Categoria":  "categoria",
		"Transações": "transacoes",
	}
	for in, want := range tests {
		if got := fold(in); got != want {
			t.Errorf("fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-03-01", "2024-03-01", false},
		{"01/03/2024", "2024-03-01", false},
		{"2024-03-01 08:00", "2024-03-01 08:00", false},
		{"", "", true},
		{"março", "", true},
		{"31/02/2024", "", true},
	}
	for _, tt := range tests {
		got, err := normalizeDate(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("normalizeDate(%q) = %q, %v; want %q, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestToStrings(t *testing.T) {
	got := toStrings([]interface{}{1500.0, 0.1, nil, "x", true})
	want := []string{"1500", "0.1", "", "x", "true"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("toStrings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
