package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"mia/internal/core"
)

// Column headers recognised in the transactions sheet, after folding.
const (
	colID          = "id"
	colDate        = "data"
	colDescription = "descricao"
	colAmount      = "valor"
	colType        = "tipo"
	colCategory    = "categoria"
	colColor       = "cor"
)

// defaultLayout is used when the first row is not a header row.
var defaultLayout = []string{colDate, colDescription, colAmount, colType, colCategory}

// RowError describes a sheet row that could not be turned into a transaction.
type RowError struct {
	Row    int // 1-based, as shown by Sheets
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// parseTransactions converts a values matrix (as returned by the Sheets API)
// into ledger entries. Rows that fail to parse are reported and skipped.
func parseTransactions(values [][]interface{}) ([]core.Transaction, []RowError) {
	if len(values) == 0 {
		return nil, nil
	}

	cols, start := layout(toStrings(values[0]))

	var (
		txs     []core.Transaction
		skipped []RowError
	)
	for i := start; i < len(values); i++ {
		rowNum := i + 1
		row := toStrings(values[i])
		if blank(row) {
			continue
		}
		tx, err := parseRow(row, cols, rowNum)
		if err != nil {
			skipped = append(skipped, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped
}

// layout maps column names to indexes. A header row is recognised by having
// both a date and an amount column; otherwise the default layout applies and
// parsing starts at the first row.
func layout(first []string) (map[string]int, int) {
	cols := map[string]int{}
	for i, h := range first {
		if key := fold(h); key != "" {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	if _, ok := cols[colDate]; ok {
		if _, ok := cols[colAmount]; ok {
			return cols, 1
		}
	}
	cols = map[string]int{}
	for i, name := range defaultLayout {
		cols[name] = i
	}
	return cols, 0
}

func parseRow(row []string, cols map[string]int, rowNum int) (core.Transaction, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok {
			return ""
		}
		return strings.TrimSpace(safeGet(row, idx))
	}

	date, err := normalizeDate(get(colDate))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(get(colAmount))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", get(colAmount), err)
	}
	txType := core.TxType(fold(get(colType)))
	if !txType.Valid() {
		return core.Transaction{}, fmt.Errorf("type %q: %w", get(colType), core.ErrInvalidType)
	}

	tx := core.Transaction{
		ID:          get(colID),
		Description: get(colDescription),
		Amount:      amount,
		Date:        date,
		Type:        txType,
	}
	if tx.ID == "" {
		tx.ID = "row-" + strconv.Itoa(rowNum)
	}
	if name := get(colCategory); name != "" {
		tx.Category = &core.CategoryRef{Name: name, Color: get(colColor)}
	}
	return tx, nil
}

// normalizeDate accepts ISO dates (optionally with a time part) and the
// DD/MM/YYYY form people type into spreadsheets.
func normalizeDate(s string) (string, error) {
	if s == "" {
		return "", core.ErrInvalidDate
	}
	if t, err := time.Parse("02/01/2006", s); err == nil {
		return t.Format("2006-01-02"), nil
	}
	if len(s) >= 10 {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s, nil
		}
	}
	return "", fmt.Errorf("date %q: %w", s, core.ErrInvalidDate)
}

// fold lowercases s and strips accents so "Descrição" matches "descricao".
func fold(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(folder, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
