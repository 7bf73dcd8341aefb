package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"word-complexity-api/internal/apperr"
	"word-complexity-api/internal/batchkey"
	"word-complexity-api/internal/config"
	"word-complexity-api/internal/models"
	"word-complexity-api/internal/ratelimit"
	"word-complexity-api/internal/telemetry"
	"word-complexity-api/internal/words"
)

const maxBodyBytes = 1 << 20

// Gateway accepts batches and reports job status.
type Gateway interface {
	Submit(ctx context.Context, words []string) (string, error)
	Status(ctx context.Context, jobID string) (models.JobView, error)
}

// Limiter throttles submissions per client.
type Limiter interface {
	Allow(ctx context.Context, client string) (ratelimit.Decision, error)
}

// DeadLetters exposes dead-lettered task IDs for operators.
type DeadLetters interface {
	DLQPeek(ctx context.Context, count int64) ([]string, error)
}

// Server wires HTTP handlers for the scoring API.
type Server struct {
	cfg     config.Config
	gateway Gateway
	limiter Limiter
	dlq     DeadLetters
	health  func(ctx context.Context) error
	log     *zap.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithLimiter enables submission rate limiting.
func WithLimiter(l Limiter) Option { return func(s *Server) { s.limiter = l } }

// WithDeadLetters enables the dead-letter inspection endpoint.
func WithDeadLetters(d DeadLetters) Option { return func(s *Server) { s.dlq = d } }

// WithHealthCheck sets the dependency probe used by /healthz.
func WithHealthCheck(fn func(ctx context.Context) error) Option {
	return func(s *Server) { s.health = fn }
}

// New constructs the API server.
func New(cfg config.Config, gw Gateway, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		gateway: gw,
		log:     log.Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Mount("/metrics", telemetry.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.rateLimit).Post("/complexity-score", s.handleSubmit)
		r.Get("/complexity-score/{id}", s.handleStatus)
		r.Get("/dlq", s.handleDLQ)
	})
	return r
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Request body too large"})
			return
		}
		s.writeError(w, r, apperr.E(apperr.InvalidInput, "api.Submit", err))
		return
	}

	processed, err := words.ParseJSON(body, words.Limits{
		MaxWords:      s.cfg.MaxWordsPerBatch,
		MaxWordLength: s.cfg.MaxWordLength,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.gateway.Submit(r.Context(), processed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{JobID: id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, ok := batchkey.Normalize(raw)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid job ID format", JobID: raw})
		return
	}

	view, err := s.gateway.Status(r.Context(), id)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Job not found", JobID: id})
			return
		}
		s.writeError(w, r, err)
		return
	}

	switch view.Status {
	case models.StatusCompleted:
		if view.Result == nil {
			view.Result = models.Result{}
		}
		writeJSON(w, http.StatusOK, view)
	case models.StatusFailed:
		writeJSON(w, http.StatusUnprocessableEntity, models.JobView{Status: models.StatusFailed})
	default:
		writeJSON(w, http.StatusOK, models.JobView{Status: view.Status})
	}
}

// handleDLQ returns the DLQ contents (task IDs only).
func (s *Server) handleDLQ(w http.ResponseWriter, r *http.Request) {
	if s.dlq == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Dead-letter inspection disabled"})
		return
	}
	items, err := s.dlq.DLQPeek(r.Context(), 100)
	if err != nil {
		s.writeError(w, r, apperr.E(apperr.StoreUnavailable, "api.DLQ", err))
		return
	}
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		decision, err := s.limiter.Allow(r.Context(), clientFromRequest(r))
		if err != nil {
			s.writeError(w, r, apperr.E(apperr.StoreUnavailable, "api.rateLimit", err))
			return
		}
		if !decision.Allowed {
			telemetry.RateLimitRejects.Inc()
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
