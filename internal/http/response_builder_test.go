package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mia/internal/core"
	"mia/internal/services"
	"mia/internal/sheets"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyString("test").
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerLedgerChanged("category.created", "cat-1").
		TriggerFormReset().
		TriggerDashboardRefresh(core.PeriodMonth).
		TriggerSuccessNotification("Categoria criada").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	expectedParts := []string{
		`"ledger:changed"`,
		`"form:reset"`,
		`"dashboard:refresh"`,
		`"show-notification"`,
		`"kind":"category.created"`,
		`"id":"cat-1"`,
		`"period":"mes"`,
		`"type":"success"`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestHTMXResponseBuilder_BodyJSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusCreated).
		BodyJSON(map[string]string{"nome": "Lazer"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != `{"nome":"Lazer"}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		accept     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation as html",
			err:        fmt.Errorf("%w: %w", services.ErrValidation, core.ErrEmptyName),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `<div class="error">Nome é obrigatório</div>`,
		},
		{
			name:       "validation as json",
			err:        fmt.Errorf("%w: %w", services.ErrValidation, core.ErrInvalidAmount),
			accept:     "application/json",
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"error":"Valor deve ser um número positivo"}`,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("get income: %w", sheets.ErrNotFound),
			accept:     "application/json",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Registro não encontrado"}`,
		},
		{
			name:       "not found as html",
			err:        sheets.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `<div class="error">Registro não encontrado</div>`,
		},
		{
			name:       "internal error as html",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `<div class="error">Erro interno</div>`,
		},
		{
			name:       "conflict",
			err:        sheets.ErrConflict,
			accept:     "application/json",
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"Já existe um registro com esse nome"}`,
		},
		{
			name:       "read-only backend",
			err:        sheets.ErrUnsupported,
			accept:     "application/json",
			wantStatus: http.StatusNotImplemented,
			wantBody:   `{"error":"Operação não suportada pela fonte de dados"}`,
		},
		{
			name:       "internal errors are not leaked",
			err:        errors.New("disk on fire"),
			accept:     "application/json",
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Erro interno"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/categories", nil)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			ErrorFor(r, tt.err).Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHTMXResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("X-Custom", "value").
		Status(http.StatusCreated).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("Invalid input"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `<div class="error">Invalid input</div>`,
		},
		{
			name:       "unprocessable entity",
			builder:    UnprocessableEntityError("Validation failed"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `<div class="error">Validation failed</div>`,
		},
		{
			name:       "internal server error",
			builder:    InternalServerError("Something broke"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `<div class="error">Something broke</div>`,
		},
		{
			name:       "not found",
			builder:    NotFoundError("Resource not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   `<div class="error">Resource not found</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("Error response did not properly escape HTML entities")
	}
}

func TestNotificationTypes(t *testing.T) {
	tests := []struct {
		notifType NotificationType
		want      string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		NewHTMXResponse().
			TriggerNotification(tt.notifType, "test", 1000).
			Write(w)

		trigger := w.Header().Get("HX-Trigger")
		if !strings.Contains(trigger, `"type":"`+tt.want+`"`) {
			t.Errorf("Notification type %q not found in trigger: %s", tt.want, trigger)
		}
	}
}
