package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts endpoint calls and failed responses, labelled by route pattern.
type Metrics struct {
	Calls  *prometheus.CounterVec
	Errors *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
//
// Returns:
// - *Metrics: The registered counters.
// - error: An error if a counter with the same name is already registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskwheel_endpoint_calls_total",
			Help: "Total number of calls per endpoint.",
		}, []string{"endpoint"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskwheel_errors_total",
			Help: "Total number of error responses per endpoint.",
		}, []string{"endpoint"}),
	}
	for _, c := range []prometheus.Collector{m.Calls, m.Errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Instrument counts every request once routing has resolved its pattern.
// Responses with a status of 400 or above also count as errors.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(res, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = req.Method + " " + rctx.RoutePattern()
		}
		m.Calls.WithLabelValues(endpoint).Inc()
		if ww.Status() >= http.StatusBadRequest {
			m.Errors.WithLabelValues(endpoint).Inc()
		}
	})
}
