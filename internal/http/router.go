// Package httpapi is the ops surface of the sweeper: liveness, Prometheus
// scraping, and read-only verdict lookups for operators.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	consenterModel "ett/internal/consenter/models"
	"ett/internal/sweep"
	"ett/internal/vacancy"
	id "ett/pkg/domain"
	dErrors "ett/pkg/domain-errors"
	"ett/pkg/platform/httputil"
)

type VacancyService interface {
	EvaluateEntity(ctx context.Context, entityID id.EntityID) (*vacancy.EntityVerdict, error)
}

type ConsentService interface {
	StatusByEmail(ctx context.Context, email string) (consenterModel.Status, error)
}

type SweepTrigger interface {
	RunNow(ctx context.Context) (*sweep.Summary, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handler is the thin HTTP layer. It delegates to the engine services and
// keeps no business logic of its own.
type Handler struct {
	vacancy  VacancyService
	consent  ConsentService
	sweeps   SweepTrigger
	gatherer prometheus.Gatherer
	checks   map[string]HealthCheck
	logger   *slog.Logger
}

type Option func(*Handler)

func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) {
		h.checks[name] = check
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func NewHandler(vac VacancyService, consent ConsentService, sweeps SweepTrigger, gatherer prometheus.Gatherer, opts ...Option) *Handler {
	h := &Handler{
		vacancy:  vac,
		consent:  consent,
		sweeps:   sweeps,
		gatherer: gatherer,
		checks:   make(map[string]HealthCheck),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter wires the ops endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Route("/ops", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get("/entities/{entityID}/vacancy", h.handleEntityVacancy)
			r.Get("/consenters/{email}/status", h.handleConsentStatus)
		})
		// A sweep covers the whole registry and is bounded only by the client.
		r.Post("/sweeps", h.handleRunSweep)
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body[name] = err.Error()
			h.logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
			continue
		}
		body[name] = "ok"
	}
	httputil.WriteJSON(w, status, body)
}

func (h *Handler) handleEntityVacancy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid entity ID"))
		return
	}
	verdict, err := h.vacancy.EvaluateEntity(ctx, entityID)
	if err != nil {
		h.logError(ctx, "entity vacancy lookup failed", err, "entity_id", entityID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verdict)
}

func (h *Handler) handleConsentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := chi.URLParam(r, "email")
	status, err := h.consent.StatusByEmail(ctx, email)
	if err != nil {
		h.logError(ctx, "consent status lookup failed", err, "email", email)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"email":  id.NormalizeEmail(email),
		"status": status.String(),
	})
}

func (h *Handler) handleRunSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.sweeps.RunNow(ctx)
	if err != nil {
		h.logError(ctx, "manual sweep failed", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "sweep failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// logError logs client mistakes at warn and everything else at error.
func (h *Handler) logError(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "request_id", middleware.GetReqID(ctx), "error", err)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound, dErrors.CodeInvalidInput:
		h.logger.WarnContext(ctx, msg, args...)
	default:
		h.logger.ErrorContext(ctx, msg, args...)
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.DebugContext(r.Context(), "request served",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
