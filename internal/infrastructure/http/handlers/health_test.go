package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, h(c))

	var body readinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLiveness(t *testing.T) {
	rec, body := serve(t, NewHealthHandler().Liveness)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewReadinessHandler(map[string]Check{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return nil },
	})

	rec, body := serve(t, h.Readiness)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Dependencies["mongodb"].Status)
	assert.Equal(t, "ok", body.Dependencies["redis"].Status)
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewReadinessHandler(map[string]Check{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})

	rec, body := serve(t, h.Readiness)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy", body.Dependencies["redis"].Status)
	assert.Equal(t, "connection refused", body.Dependencies["redis"].Error)
	assert.Equal(t, "ok", body.Dependencies["mongodb"].Status)
}
