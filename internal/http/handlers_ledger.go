package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync/atomic"

	"mia/internal/amqp"
	"mia/internal/core"
	applog "mia/internal/log"
	"mia/internal/services"
)

// handleListCategories returns categories, optionally filtered by ?tipo=.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	t := core.TxType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tipo"))))
	cats, err := s.ledger.ListCategories(ctx, t)
	if err != nil {
		s.writeFailure(w, r, "Category list failed", err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	NewHTMXResponse().BodyJSON(cats).Write(w)
}

// handleCreateCategory accepts the category form as JSON or urlencoded.
// JSON clients get the stored category, HTMX gets a list row and plain form
// posts are redirected back to the categories page.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	body, fail := ParseBodyOrFail(r)
	if fail != nil {
		atomic.AddInt64(&s.appMetrics.failedWrites, 1)
		fail.Write(w)
		return
	}

	c := core.Category{
		Name:        body.Get("nome"),
		Description: body.Get("descricao"),
		Color:       body.Get("cor"),
		Active:      parseActive(body),
		Type:        core.TxType(strings.ToLower(body.Get("tipo"))),
	}

	created, err := s.ledger.CreateCategory(ctx, c)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.failedWrites, 1)
		s.writeFailure(w, r, "Category create failed", err)
		return
	}
	atomic.AddInt64(&s.appMetrics.ledgerWrites, 1)

	switch {
	case wantsJSON(r) || body.IsJSON():
		NewHTMXResponse().Status(http.StatusCreated).BodyJSON(created).Write(w)
	case isHTMX(r):
		var sb strings.Builder
		if s.templates == nil || s.templates.ExecuteTemplate(&sb, "category_row", created) != nil {
			sb.Reset()
			sb.WriteString(`<li class="category">` + template.HTMLEscapeString(created.Name) + `</li>`)
		}
		NewHTMXResponse().
			Status(http.StatusCreated).
			TriggerLedgerChanged(amqp.KindCategoryCreated, created.ID).
			TriggerDashboardRefresh(ParsePeriodParam(r.URL.Query())).
			TriggerFormReset().
			TriggerSuccessNotification("Categoria criada com sucesso").
			BodyHTML(sb.String()).
			Write(w)
	default:
		http.Redirect(w, r, "/categorias", http.StatusSeeOther)
	}
}

// parseActive reads the "ativa" flag. Missing means active; checkbox "on"
// and the usual boolean spellings are accepted.
func parseActive(body *RequestBodyParser) bool {
	if !body.Has("ativa") {
		return true
	}
	switch strings.ToLower(body.Get("ativa")) {
	case "false", "0", "off", "nao", "não":
		return false
	}
	return true
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	in, err := s.ledger.GetIncome(ctx, r.PathValue("id"))
	if err != nil {
		s.writeFailure(w, r, "Income lookup failed", err)
		return
	}
	NewHTMXResponse().BodyJSON(in).Write(w)
}

// handleUpdateIncome applies the income edit form to the receita with the
// path id.
func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	body, fail := ParseBodyOrFail(r)
	if fail != nil {
		atomic.AddInt64(&s.appMetrics.failedWrites, 1)
		fail.Write(w)
		return
	}

	amount, err := core.ParseAmount(body.Get("valor"))
	if err != nil {
		atomic.AddInt64(&s.appMetrics.failedWrites, 1)
		s.writeFailure(w, r, "Income update rejected", fmt.Errorf("%w: %w", services.ErrValidation, err))
		return
	}

	in := core.Income{
		ID:          r.PathValue("id"),
		Description: body.Get("descricao"),
		Amount:      amount,
		Category:    body.Get("categoria"),
		Date:        body.Get("data"),
		Kind:        core.IncomeKind(strings.ToLower(body.Get("tipo"))),
	}

	updated, err := s.ledger.UpdateIncome(ctx, in)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.failedWrites, 1)
		s.writeFailure(w, r, "Income update failed", err)
		return
	}
	atomic.AddInt64(&s.appMetrics.ledgerWrites, 1)

	NewHTMXResponse().
		TriggerLedgerChanged(amqp.KindIncomeUpdated, updated.ID).
		TriggerDashboardRefresh(ParsePeriodParam(r.URL.Query())).
		TriggerSuccessNotification("Receita atualizada com sucesso").
		BodyJSON(updated).
		Write(w)
}

// writeFailure logs err at a level matching its status and writes the
// mapped error response.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, _ := statusFor(err)
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentLedger)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		logger.ErrorContext(r.Context(), msg, applog.FieldStatusCode, status, applog.FieldError, err)
	} else {
		logger.WarnContext(r.Context(), msg, applog.FieldStatusCode, status, applog.FieldError, err)
	}
	ErrorFor(r, err).Write(w)
}
