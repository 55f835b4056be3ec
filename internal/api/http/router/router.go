package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dtroode/authkeeper/internal/api/http/handler"
	"github.com/dtroode/authkeeper/internal/api/http/middleware"
	"github.com/dtroode/authkeeper/internal/api/http/response"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/metrics"
	"github.com/dtroode/authkeeper/internal/model"
)

const healthTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Router wires the HTTP handlers and middleware of the service.
type Router struct {
	authService    handler.AuthService
	verifier       middleware.TokenVerifier
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	health         HealthChecker
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	authService handler.AuthService,
	verifier middleware.TokenVerifier,
	contextManager model.ContextManager,
	metrics *metrics.Metrics,
	health HealthChecker,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		verifier:       verifier,
		contextManager: contextManager,
		metrics:        metrics,
		health:         health,
		logger:         logger,
	}
}

// Register builds the routing tree.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	requestMetrics := middleware.NewMetrics(r.metrics)
	authenticate := middleware.NewAuthenticate(r.verifier, r.contextManager, r.logger)

	m := mux.NewRouter()
	m.Use(logging.Handle, requestMetrics.Handle)

	withFallbacks(m)

	m.HandleFunc("/up", r.up).Methods(http.MethodGet, http.MethodHead)
	m.Handle("/metrics", r.metrics.Handler()).Methods(http.MethodGet)

	h := handler.NewAuth(r.authService, r.contextManager, r.metrics, r.logger)
	protected := func(f http.HandlerFunc) http.Handler {
		return authenticate.Handle(f)
	}

	// A subrouter resolves its own mismatches before the parent sees them.
	api := m.PathPrefix("/api/auth").Subrouter()
	withFallbacks(api)
	api.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	api.Handle("/logout", protected(h.Logout)).Methods(http.MethodDelete)
	api.Handle("/me", protected(h.Me)).Methods(http.MethodGet)
	api.HandleFunc("/confirmation", h.SendConfirmation).Methods(http.MethodPost)
	api.HandleFunc("/confirmation", h.Confirm).Methods(http.MethodGet)
	api.HandleFunc("/password", h.SendResetPassword).Methods(http.MethodPost)
	api.HandleFunc("/password", h.ResetPassword).Methods(http.MethodPut)
	api.Handle("/password/change", protected(h.ChangePassword)).Methods(http.MethodPut)

	return m
}

func withFallbacks(m *mux.Router) {
	m.NotFoundHandler = http.HandlerFunc(notFound)
	m.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (r *Router) up(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), healthTimeout)
	defer cancel()

	if err := r.health.Ping(ctx); err != nil {
		r.logger.Error("Health check failed", "error", err.Error())
		response.Error(w, http.StatusServiceUnavailable, "Service unavailable")
		return
	}
	response.Success(w, http.StatusOK, nil, "ok")
}
