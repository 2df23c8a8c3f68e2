package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"mia/internal/core"
)

func TestParsePeriodParam(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  core.Period
	}{
		{"missing defaults to month", url.Values{}, core.PeriodMonth},
		{"day", url.Values{"period": {"dia"}}, core.PeriodDay},
		{"accented month alias", url.Values{"period": {"mês"}}, core.PeriodMonth},
		{"case and spaces", url.Values{"period": {" Semana "}}, core.PeriodWeek},
		{"unknown is kept", url.Values{"period": {"trimestre"}}, core.Period("trimestre")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePeriodParam(tt.query); got != tt.want {
				t.Errorf("ParsePeriodParam() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_Has(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"ativa": false, "nome": ""}`))
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.Has("ativa") || !parser.Has("nome") {
		t.Error("Has() should report keys sent with zero values")
	}
	if parser.Has("cor") {
		t.Error("Has('cor') should be false")
	}
	if got := parser.Get("ativa"); got != "false" {
		t.Errorf("Get('ativa') = %q, want 'false'", got)
	}
}

func TestRequestBodyParser_StripsControlCharacters(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("nome=Lazer%00%07&descricao=+fim+de+semana+"))
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := parser.Get("nome"); got != "Lazer" {
		t.Errorf("Get('nome') = %q, want 'Lazer'", got)
	}
	if got := parser.Get("descricao"); got != "fim de semana" {
		t.Errorf("Get('descricao') = %q", got)
	}
}

func TestParseBodyOrFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"nome": `))
	req.Header.Set("Content-Type", "application/json")

	parser, fail := ParseBodyOrFail(req)
	if parser != nil || fail == nil {
		t.Fatal("expected malformed JSON to fail")
	}
	w := httptest.NewRecorder()
	fail.Write(w)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("nome=Lazer"))
	parser, fail = ParseBodyOrFail(req)
	if fail != nil {
		t.Fatal("expected form body to parse")
	}
	if parser.Get("nome") != "Lazer" {
		t.Errorf("Get('nome') = %q", parser.Get("nome"))
	}
}

func TestParseBodyOrFail_TooLarge(t *testing.T) {
	body := "nome=" + strings.Repeat("a", MaxBodyBytes)
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser, fail := ParseBodyOrFail(req)
	if parser != nil || fail == nil {
		t.Fatal("expected oversized body to fail instead of parsing a truncated form")
	}
	w := httptest.NewRecorder()
	fail.Write(w)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("nome="+strings.Repeat("a", MaxBodyBytes-len("nome="))))
	if _, fail := ParseBodyOrFail(req); fail != nil {
		t.Error("body of exactly MaxBodyBytes should parse")
	}
}
