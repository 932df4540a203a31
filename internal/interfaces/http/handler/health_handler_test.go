package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantBody   []string
	}{
		{"no checks", nil, http.StatusOK, []string{`"status":"healthy"`}},
		{"all pass", map[string]HealthCheck{"database": ok, "staging": ok}, http.StatusOK,
			[]string{`"database":"ok"`, `"staging":"ok"`}},
		{"one fails", map[string]HealthCheck{"database": ok, "staging": down}, http.StatusServiceUnavailable,
			[]string{`"status":"unhealthy"`, `"database":"ok"`, `"staging":"error"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler()
			h.now = func() time.Time { return fixed }
			for name, check := range tt.checks {
				h.WithCheck(name, check)
			}

			r := gin.New()
			r.GET("/health", h.Health)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"time":"2026-03-01T12:00:00Z"`)
			for _, s := range tt.wantBody {
				assert.Contains(t, w.Body.String(), s)
			}
		})
	}
}

func TestHealthHandler_CheckSeesDeadline(t *testing.T) {
	h := NewHealthHandler()
	h.timeout = 50 * time.Millisecond
	h.WithCheck("slow", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		<-ctx.Done()
		return ctx.Err()
	})

	r := gin.New()
	r.GET("/health", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
