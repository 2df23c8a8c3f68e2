package http

import (
	"context"
	"net/http"
	"sync/atomic"

	"mia/internal/core"
	applog "mia/internal/log"
	"mia/internal/present"
)

// NavItem is an entry of the sidebar menu.
type NavItem struct {
	Slug   string
	Title  string
	Active bool
}

var navItems = []NavItem{
	{Slug: "dashboard", Title: "Dashboard"},
	{Slug: "receitas", Title: "Receitas"},
	{Slug: "despesas", Title: "Despesas"},
	{Slug: "transacoes", Title: "Transações"},
	{Slug: "dividas", Title: "Dívidas"},
	{Slug: "categorias", Title: "Categorias"},
	{Slug: "relatorios", Title: "Relatórios"},
	{Slug: "metas", Title: "Metas"},
	{Slug: "perfil", Title: "Perfil"},
}

// Nav returns the menu with slug marked active. Unknown slugs leave every
// item inactive.
func Nav(slug string) []NavItem {
	out := make([]NavItem, len(navItems))
	copy(out, navItems)
	for i := range out {
		out[i].Active = out[i].Slug == slug
	}
	return out
}

func navTitle(slug string) (string, bool) {
	for _, it := range navItems {
		if it.Slug == slug {
			return it.Title, true
		}
	}
	return "", false
}

type pageData struct {
	Title string
	Nav   []NavItem
	View  *present.View
	Error string

	Categories []core.Category
	Palette    []string
}

func (s *Server) buildView(r *http.Request) (present.View, core.Period, error) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	p := ParsePeriodParam(r.URL.Query())
	v, err := s.dashboard.Build(ctx, p)
	if err != nil {
		return present.View{}, p, err
	}
	atomic.AddInt64(&s.appMetrics.dashboardRenders, 1)
	return v, p, nil
}

// handleDashboardPage renders the dashboard inside the navigation shell. A
// failed build still renders the shell with an error banner.
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Dashboard", Nav: Nav("dashboard")}

	v, p, err := s.buildView(r)
	if err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentDashboard).
			ErrorContext(r.Context(), "Dashboard build failed",
				applog.FieldPeriod, string(p),
				applog.FieldError, err)
		_, data.Error = statusFor(err)
	} else {
		data.View = &v
	}

	if isHTMX(r) {
		s.render(w, r, "dashboard_content", data)
		return
	}
	s.render(w, r, "dashboard.html", data)
}

// handleDashboardJSON returns the assembled view.
func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	v, p, err := s.buildView(r)
	if err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentDashboard).
			ErrorContext(r.Context(), "Dashboard build failed",
				applog.FieldPeriod, string(p),
				applog.FieldError, err)
		status, msg := statusFor(err)
		JSONErrorResponse(status, msg).Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(v).Write(w)
}

// handleNavPage renders the shell for menu entries without a page of their
// own yet.
func (s *Server) handleNavPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("page")
	title, ok := navTitle(slug)
	if !ok {
		NotFoundError("Página não encontrada").Write(w)
		return
	}
	s.render(w, r, "page.html", pageData{Title: title, Nav: Nav(slug)})
}

// handleCategoriesPage lists categories next to the creation form.
func (s *Server) handleCategoriesPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	data := pageData{Title: "Categorias", Nav: Nav("categorias"), Palette: core.CategoryPalette}
	cats, err := s.ledger.ListCategories(ctx, "")
	if err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentLedger).
			ErrorContext(r.Context(), "Category list failed", applog.FieldError, err)
		_, data.Error = statusFor(err)
	}
	data.Categories = cats
	s.render(w, r, "categories.html", data)
}
