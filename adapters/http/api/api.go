// Package api provides the JSON HTTP dispatcher. It decodes payloads and path
// parameters, calls into the application services, and maps the error taxonomy
// to HTTP statuses: ValidationError -> 400, not-found -> 404, anything else
// -> 500.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/artpar/saasmon/adapters/metrics"
	"github.com/artpar/saasmon/app"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler provides the API endpoints.
type Handler struct {
	accounts  *app.AccountService
	analytics *app.AnalyticsService
	metrics   *metrics.Collector
	logger    zerolog.Logger
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Accounts  *app.AccountService
	Analytics *app.AnalyticsService
	Metrics   *metrics.Collector // optional
	Logger    zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		accounts:  deps.Accounts,
		analytics: deps.Analytics,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

// Router returns the API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requestLogger)

	r.Get("/health", h.Health)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.CreateAccount)
		r.Get("/", h.ListAccounts)
		r.Get("/{id}", h.GetAccount)
		r.Put("/{id}", h.UpdateAccount)
		r.Delete("/{id}", h.DeleteAccount)

		r.Post("/{id}/usage", h.AppendUsageLog)
		r.Get("/{id}/usage", h.ListUsageLogs)
		r.Delete("/{id}/usage/{logID}", h.RemoveUsageLog)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/average-usage", h.AverageUsage)
		r.Get("/anomalies", h.Anomalies)
	})

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger tags each request with an id, logs it, and records metrics.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		h.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", elapsed).
			Msg("request")

		if h.metrics != nil {
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = r.URL.Path
			}
			h.metrics.RequestsTotal.WithLabelValues(r.Method, pattern, httpStatusLabel(rec.status)).Inc()
			h.metrics.RequestDuration.WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func httpStatusLabel(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeServiceError maps the core error taxonomy to an HTTP response.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *app.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, "validation_error", verr.Reason)
		return
	}
	if errors.Is(err, app.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "No matching account or log")
		return
	}
	h.logger.Error().Err(err).Msg("storage failure")
	writeError(w, http.StatusInternalServerError, "storage_error", "Storage operation failed")
}
