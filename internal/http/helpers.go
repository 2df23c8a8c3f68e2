package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mia/internal/core"
	"mia/internal/services"
	"mia/internal/sheets"
)

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// statusFor maps a service error to the response status and the message
// shown to the user. Internal failures get a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusUnprocessableEntity, validationMessage(err)
	case errors.Is(err, sheets.ErrNotFound):
		return http.StatusNotFound, "Registro não encontrado"
	case errors.Is(err, sheets.ErrConflict):
		return http.StatusConflict, "Já existe um registro com esse nome"
	case errors.Is(err, sheets.ErrUnsupported):
		return http.StatusNotImplemented, "Operação não suportada pela fonte de dados"
	case errors.Is(err, sheets.ErrLoading):
		return http.StatusServiceUnavailable, "Dados ainda carregando, tente novamente"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Tempo esgotado"
	}
	return http.StatusInternalServerError, "Erro interno"
}

var fieldMessages = []struct {
	err error
	msg string
}{
	{core.ErrEmptyName, "Nome é obrigatório"},
	{core.ErrEmptyDescription, "Descrição é obrigatória"},
	{core.ErrInvalidAmount, "Valor deve ser um número positivo"},
	{core.ErrEmptyCategory, "Categoria é obrigatória"},
	{core.ErrInvalidDate, "Data inválida (use AAAA-MM-DD)"},
	{core.ErrInvalidColor, "Cor inválida"},
	{core.ErrInvalidKind, "Tipo de receita inválido"},
	{core.ErrInvalidType, "Tipo inválido"},
}

func validationMessage(err error) string {
	for _, fm := range fieldMessages {
		if errors.Is(err, fm.err) {
			return fm.msg
		}
	}
	msg := strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
	return msg
}

// wantsJSON reports whether the client asked for a JSON answer, either
// explicitly or by sending JSON.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
