package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"registration-service/internal/httputil"
	"registration-service/internal/metrics"

	"github.com/go-chi/chi/v5"
)

const (
	rootMessage  = "Student Registration API is running!"
	DependencyDB = "database"
	readyTimeout = 2 * time.Second
)

// Pinger is satisfied by *bun.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db      Pinger
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(db Pinger, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if m == nil {
		m = metrics.NewMock()
	}
	return &Handler{
		db:      db,
		logger:  logger,
		metrics: m,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
}

type RootResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, RootResponse{Message: rootMessage})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	h.metrics.Health.RecordDependencyCheck(ctx, DependencyDB, time.Since(start), err)

	if err != nil {
		h.logger.WarnContext(ctx, "readiness check failed", "dependency", DependencyDB, "error", err)
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
