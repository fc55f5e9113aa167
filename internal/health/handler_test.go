package health_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"registration-service/internal/health"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(context.Context) error { return p.err }

func setupRouter(p health.Pinger) chi.Router {
	router := chi.NewRouter()
	health.NewHandler(p, slog.New(slog.NewTextHandler(io.Discard, nil)), nil).RegisterRoutes(router)
	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandler(t *testing.T) {
	t.Run("Root", func(t *testing.T) {
		w := get(setupRouter(stubPinger{}), "/")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Student Registration API is running!"}`, w.Body.String())
	})

	t.Run("Health", func(t *testing.T) {
		w := get(setupRouter(stubPinger{err: errors.New("down")}), "/health")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("Ready", func(t *testing.T) {
		w := get(setupRouter(stubPinger{}), "/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
	})

	t.Run("NotReady", func(t *testing.T) {
		w := get(setupRouter(stubPinger{err: errors.New("connection refused")}), "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
	})
}
