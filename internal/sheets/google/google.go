// Package google reads the ledger from a Google Sheet. The backend is
// read-only: every write answers sheets.ErrUnsupported.
package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"mia/internal/core"
	"mia/internal/dates"
	applog "mia/internal/log"
	ports "mia/internal/sheets"
)

// Ensure interface conformance
var (
	_ ports.TransactionLister = (*Client)(nil)
	_ ports.MarketItemLister  = (*Client)(nil)
	_ ports.DebtLister        = (*Client)(nil)
	_ ports.VehicleLister     = (*Client)(nil)
	_ ports.ProfileReader     = (*Client)(nil)
	_ ports.CategoryStore     = (*Client)(nil)
	_ ports.IncomeStore       = (*Client)(nil)
)

// Config selects the spreadsheet and how to authenticate against it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
	RefreshInterval time.Duration
}

// fetchFunc returns the raw cell values of the transactions sheet.
type fetchFunc func(ctx context.Context) ([][]interface{}, error)

type Client struct {
	fetch   fetchFunc
	refresh time.Duration
	logger  *applog.Logger

	mu      sync.RWMutex
	txs     []core.Transaction
	loaded  bool
	lastErr error

	startOnce sync.Once
	stop      context.CancelFunc
	done      chan struct{}
}

// New creates a Sheets client authenticated with a service account. The
// sheet is not read until Start is called.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		cfg.SheetName = "Transacoes"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	rng := fmt.Sprintf("%s!A:G", cfg.SheetName)
	fetch := func(ctx context.Context) ([][]interface{}, error) {
		resp, err := svc.Spreadsheets.Values.Get(cfg.SpreadsheetID, rng).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rng, err)
		}
		return resp.Values, nil
	}
	return newClient(fetch, cfg.RefreshInterval, logger), nil
}

func newClient(fetch fetchFunc, refresh time.Duration, logger *applog.Logger) *Client {
	if logger == nil {
		logger = applog.Discard()
	}
	if refresh <= 0 {
		refresh = time.Minute
	}
	return &Client{
		fetch:   fetch,
		refresh: refresh,
		logger:  logger.WithComponent(applog.ComponentSheets),
	}
}

// credentials resolves the service account key from inline JSON, a file,
// or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read GOOGLE_APPLICATION_CREDENTIALS: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// newSheetsService builds a read-only Sheets service on top of a pooled
// HTTP client carrying the service account token source.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	data, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	creds, err := goauth.CredentialsFromJSON(ctx, data, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	httpClient := newHTTPClientWithPooling()
	httpClient.Transport = &oauth2.Transport{
		Source: creds.TokenSource,
		Base:   httpClient.Transport,
	}

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// Start reads the sheet in the background and keeps re-reading it every
// refresh interval until Close. Until the first read succeeds the client
// answers ErrLoading.
func (c *Client) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		ctx, c.stop = context.WithCancel(ctx)
		c.done = make(chan struct{})
		go c.loop(ctx)
	})
}

func (c *Client) loop(ctx context.Context) {
	defer close(c.done)
	c.Refresh(ctx)

	ticker := time.NewTicker(c.refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Refresh reads the sheet once. On failure the previous rows are kept.
func (c *Client) Refresh(ctx context.Context) error {
	start := time.Now()
	values, err := c.fetch(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		c.logger.ErrorContext(ctx, "Failed to read transactions sheet", applog.FieldError, err)
		return err
	}

	txs, skipped := parseTransactions(values)
	for _, rowErr := range skipped {
		c.logger.WarnContext(ctx, "Skipping sheet row", "row", rowErr.Row, "reason", rowErr.Reason)
	}

	c.mu.Lock()
	c.txs = txs
	c.loaded = true
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Transactions sheet loaded",
		applog.FieldTxCount, len(txs),
		"skipped", len(skipped),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Loaded reports whether the first read has completed.
func (c *Client) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// LastError returns the error of the latest failed read, if any.
func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Client) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, ports.ErrLoading
	}
	out := make([]core.Transaction, len(c.txs))
	for i, tx := range c.txs {
		if tx.Category != nil {
			ref := *tx.Category
			tx.Category = &ref
		}
		out[i] = tx
	}
	return out, nil
}

// ListMarketItems returns nothing: the sheet carries transactions only.
func (c *Client) ListMarketItems(context.Context) ([]core.MarketItem, error) { return nil, nil }

// ListDebts returns nothing: the sheet carries transactions only.
func (c *Client) ListDebts(context.Context) ([]core.Debt, error) { return nil, nil }

// ListVehicles returns nothing: the sheet carries transactions only.
func (c *Client) ListVehicles(context.Context) ([]core.Vehicle, error) { return nil, nil }

// Profile returns no profile: the sheet carries transactions only, so the
// dashboard greets with the default name.
func (c *Client) Profile(context.Context) (*core.Profile, error) { return nil, nil }

// ListCategories derives the categories from the names used in the sheet.
func (c *Client) ListCategories(ctx context.Context, t core.TxType) ([]core.Category, error) {
	txs, err := c.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []core.Category
	for _, tx := range txs {
		if tx.Category == nil || (t != "" && tx.Type != t) {
			continue
		}
		key := strings.ToLower(tx.Category.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		color := tx.Category.Color
		if color == "" {
			color = core.DefaultCategoryColor
		}
		out = append(out, core.Category{
			ID:     "sheet-" + key,
			Name:   tx.Category.Name,
			Color:  color,
			Active: true,
			Type:   tx.Type,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Client) CreateCategory(context.Context, core.Category) (core.Category, error) {
	return core.Category{}, fmt.Errorf("create category: %w", ports.ErrUnsupported)
}

func (c *Client) GetIncome(ctx context.Context, id string) (core.Income, error) {
	txs, err := c.ListTransactions(ctx)
	if err != nil {
		return core.Income{}, err
	}
	for _, tx := range txs {
		if tx.ID == id && tx.IsIncome() {
			return core.Income{
				ID:          tx.ID,
				Description: tx.Description,
				Amount:      tx.Amount,
				Category:    tx.CategoryName(),
				Date:        string(dates.DateOnly(tx.Date)),
				Kind:        core.Variavel,
			}, nil
		}
	}
	return core.Income{}, fmt.Errorf("income %q: %w", id, ports.ErrNotFound)
}

func (c *Client) UpdateIncome(context.Context, core.Income) (core.Income, error) {
	return core.Income{}, fmt.Errorf("update income: %w", ports.ErrUnsupported)
}

// Close stops the refresh loop.
func (c *Client) Close() error {
	if c.stop != nil {
		c.stop()
		<-c.done
	}
	return nil
}
