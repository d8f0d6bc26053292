package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/core/domain"
)

// Envelope is the body of every API response.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Status     string      `json:"status"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Pagination accompanies list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// nullData is an explicit JSON null for responses that carry no entity.
type nullData struct{}

func (nullData) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func respond(c echo.Context, code int, message string, data any) error {
	if data == nil {
		data = nullData{}
	}
	return c.JSON(code, Envelope{
		StatusCode: code,
		Message:    message,
		Status:     "success",
		Data:       data,
	})
}

func respondList[T any](c echo.Context, message string, items []T, page domain.Page, total int64) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Message:    message,
		Status:     "success",
		Data:       items,
		Pagination: &Pagination{Page: page.Number, Limit: page.Limit, Total: total},
	})
}

// ErrorEnvelope builds the body written by the HTTP error handler.
func ErrorEnvelope(code int, detail string) Envelope {
	return Envelope{
		StatusCode: code,
		Message:    http.StatusText(code),
		Status:     "error",
		Error:      detail,
	}
}
