package handlers

import (
	"net/http"
	"time"

	"TaskWheelService/response"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RouterConfig holds everything NewRouter wires together.
// Metrics, Gatherer and Limiter are optional.
type RouterConfig struct {
	Tasks          *TaskHandler
	Auth           *AuthHandler
	Authenticator  Authenticator
	Metrics        *Metrics
	Gatherer       prometheus.Gatherer
	Limiter        *rate.Limiter
	RequestTimeout time.Duration
	Log            logrus.FieldLogger
}

// NewRouter builds the HTTP API:
//
//  1. GET /api/health - Liveness check
//  2. POST /api/auth/register, POST /api/auth/login, GET /api/auth/me
//  3. GET, POST /api/tasks - List and create tasks
//  4. GET /api/tasks/stats - Task counts by status and category
//  5. GET /api/tasks/random - Spin the task wheel
//  6. GET, PUT, DELETE /api/tasks/{id}
//  7. GET /metrics - Prometheus metrics
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(RequestLogger(cfg.Log))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Instrument)
	}

	r.NotFound(func(res http.ResponseWriter, req *http.Request) {
		_ = response.Write(res, http.StatusNotFound, response.Failed("Route not found"))
	})
	r.MethodNotAllowed(func(res http.ResponseWriter, req *http.Request) {
		_ = response.Write(res, http.StatusMethodNotAllowed, response.Failed("Method not allowed"))
	})

	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(RateLimiter(cfg.Limiter))
		}
		r.Use(RequestTimeout(cfg.RequestTimeout))

		r.Get("/health", health)
		r.Route("/auth", cfg.Auth.Routes)
		r.Route("/tasks", func(r chi.Router) {
			r.Use(RequireAuth(cfg.Authenticator, cfg.Log))
			cfg.Tasks.Routes(r)
		})
	})
	return r
}

func health(res http.ResponseWriter, _ *http.Request) {
	_ = response.Write(res, http.StatusOK, response.OK("Server is running", map[string]string{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}))
}
