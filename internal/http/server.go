package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"mia/internal/core"
	"mia/internal/icons"
	applog "mia/internal/log"
	"mia/internal/middleware/ratelimit"
	"mia/internal/middleware/security"
	"mia/internal/middleware/trace"
	"mia/internal/present"
	appweb "mia/web"
)

// handlerTimeout bounds every data-bound handler.
const handlerTimeout = 7 * time.Second

// DashboardBuilder is implemented by *dashboard.Service.
type DashboardBuilder interface {
	Build(ctx context.Context, p core.Period) (present.View, error)
}

// Ledger is implemented by *services.LedgerService.
type Ledger interface {
	ListCategories(ctx context.Context, t core.TxType) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetIncome(ctx context.Context, id string) (core.Income, error)
	UpdateIncome(ctx context.Context, in core.Income) (core.Income, error)
}

// Deps are the collaborators of the server. Templates and Static default to
// the embedded web assets when nil.
type Deps struct {
	Dashboard DashboardBuilder
	Ledger    Ledger
	// Ready reports whether the data backend answers. Nil means always ready.
	Ready          func(ctx context.Context) error
	Templates      fs.FS
	Static         fs.FS
	RateLimit      ratelimit.Config
	TrustedProxies []string
}

type Server struct {
	http.Server
	templates *template.Template
	dashboard DashboardBuilder
	ledger    Ledger
	ready     func(ctx context.Context) error
	logger    *applog.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime           time.Time
	dashboardRenders int64
	ledgerWrites     int64
	failedWrites     int64
}

var templateFuncs = template.FuncMap{
	"glyph": func(i icons.Icon) string { return i.Glyph() },
	"lower": strings.ToLower,
}

// NewServer wires routes and middleware. A template parse failure is logged
// and leaves the HTML pages answering 500 while the API keeps working.
func NewServer(addr string, deps Deps, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	httpLogger := logger.WithComponent(applog.ComponentHTTP)

	tfs := deps.Templates
	if tfs == nil {
		tfs = appweb.TemplatesFS
	}
	var templates *template.Template
	if t, err := template.New("").Funcs(templateFuncs).ParseFS(tfs, "templates/*.html"); err != nil {
		logger.WithComponent(applog.ComponentTemplate).Error("Template parse failed", applog.FieldError, err)
	} else {
		templates = t
	}

	rlConfig := deps.RateLimit
	if rlConfig.RequestsPerMinute == 0 {
		rlConfig = ratelimit.DefaultConfig()
	}

	detector := security.NewDetector()
	for _, cidr := range deps.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			httpLogger.Warn("Ignoring trusted proxy", "cidr", cidr, applog.FieldError, err)
		}
	}

	s := &Server{
		templates:        templates,
		dashboard:        deps.Dashboard,
		ledger:           deps.Ledger,
		ready:            deps.Ready,
		logger:           httpLogger,
		rateLimiter:      ratelimit.NewLimiter(rlConfig),
		securityDetector: detector,
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(detector.ExtractClientIP, logger)

	mux := http.NewServeMux()

	static := deps.Static
	if static == nil {
		static = appweb.StaticFS
	}
	mux.Handle("GET /static/", security.StaticAssets(3600)(http.FileServerFS(static)))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	mux.HandleFunc("GET /dashboard", s.handleDashboardPage)
	mux.HandleFunc("GET /categorias", s.handleCategoriesPage)
	mux.HandleFunc("GET /{page}", s.handleNavPage)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboardJSON)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/incomes/{id}", s.handleGetIncome)
	mux.HandleFunc("PUT /api/incomes/{id}", s.handleUpdateIncome)
	mux.HandleFunc("POST /api/incomes/{id}", s.handleUpdateIncome)

	limited := s.rateLimiter.Middleware(detector.ExtractClientIP, nil)(mux)
	screened := detector.Middleware(limited)
	hardened := security.Headers(security.DefaultHeadersConfig())(screened)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.traceMiddleware.Middleware(hardened),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
	})
	return s.Server.Shutdown(ctx)
}

// render executes a page template. Failures are logged and answered with 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate)
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("Erro ao carregar a página").Write(w)
		return
	}
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed", "template", name, applog.FieldError, err)
		InternalServerError("Erro ao carregar a página").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(buf.String()))
}
