// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/internal/domain/ledger"
	"github.com/okian/podium/internal/domain/session"
	"github.com/okian/podium/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	CatalogDependencies
	ResultsDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	sessionHandler *SessionHandler
	catalogHandler *CatalogHandler
	resultsHandler *ResultsHandler
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	auth           func(http.HandlerFunc) http.HandlerFunc
	opts           serverOptions
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	o := defaultServerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		sessionHandler: NewSessionHandler(deps, o.logger),
		catalogHandler: NewCatalogHandler(deps, o.logger),
		resultsHandler: NewResultsHandler(deps, o.logger),
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		auth:           RequireAuth(deps),
		opts:           o,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /api/login", MetricsMiddleware(s.sessionHandler.HandleLogin, "login"))
	mux.HandleFunc("GET /api/me", MetricsMiddleware(s.auth(s.sessionHandler.HandleMe), "me"))
	mux.HandleFunc("GET /api/games", MetricsMiddleware(s.catalogHandler.HandleGames, "games"))
	mux.HandleFunc("GET /api/faculties", MetricsMiddleware(s.catalogHandler.HandleFaculties, "faculties"))
	mux.HandleFunc("GET /api/results", MetricsMiddleware(s.resultsHandler.HandleList, "results"))
	mux.HandleFunc("POST /api/results", MetricsMiddleware(s.auth(s.resultsHandler.HandleRecord), "results"))
	mux.HandleFunc("DELETE /api/results/{gameId}/{position}",
		MetricsMiddleware(s.auth(s.resultsHandler.HandleDelete), "results_delete"))

	// Unknown API paths answer in JSON instead of falling through to the site.
	mux.HandleFunc("/api/", MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	}, "api_not_found"))
}

// Handler wraps next with the cross-cutting middleware: request logging,
// CORS and body limits.
func (s *Server) Handler(next http.Handler) http.Handler {
	h := LimitBody(s.opts.maxBodyBytes)(next)
	h = CORS(s.opts.corsOrigin)(h)
	return RequestLogger(s.opts.logger)(h)
}

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps domain errors to a status code and a client-safe message.
func statusFor(err error) (int, string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "Invalid request body"
	case errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, session.ErrAuthentication), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, queue.ErrBackpressure):
		return http.StatusTooManyRequests, "Too many pending writes"
	case errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable, "Service shutting down"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Request cancelled"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ledger.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(ledger.ErrValidation.Error())+2:]
	}
	return msg
}

// fail writes the mapped error and logs server-side failures.
func fail(ctx context.Context, w http.ResponseWriter, log logger.Logger, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.String("op", op), logger.Error(WrapKind(op, ErrInternal, err)))
	} else {
		log.Debug(ctx, "request rejected", logger.String("op", op), logger.Error(err))
	}
	writeError(w, status, msg)
}
