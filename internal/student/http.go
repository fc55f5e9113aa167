package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"registration-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts the student routes. Each path is served with and
// without the trailing slash.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/students", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form RegistrationForm
	if err := httputil.DecodeJSON(r, &form); err != nil {
		h.logger.InfoContext(r.Context(), "invalid registration body", "error", err)
		h.handleDecodeError(w, err)
		return
	}

	student, err := h.service.Register(r.Context(), form)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student.ToResponse())
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListRegistrations(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	out := make([]Response, 0, len(students))
	for i := range students {
		out = append(out, students[i].ToResponse())
	}
	httputil.RespondWithJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return
	}

	student, err := h.service.GetRegistration(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student.ToResponse())
}

// handleDecodeError names the offending field when a value has the wrong JSON type.
func (h *Handler) handleDecodeError(w http.ResponseWriter, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type),
		}
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, field.Message, []FieldError{field})
		return
	}
	httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		httputil.RespondWithFieldErrors(w, http.StatusBadRequest, verr.Error(), verr.Fields)
		return
	}

	var dup *DuplicateError
	if errors.As(err, &dup) {
		httputil.RespondWithError(w, http.StatusBadRequest, dup.Error())
		return
	}

	if errors.Is(err, ErrStudentNotFound) {
		httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
		return
	}

	h.logger.ErrorContext(r.Context(), "internal error", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}
