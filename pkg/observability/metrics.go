package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Invocation outcomes recorded by the middleware.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the engine collectors.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	nodeVisits  *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with a fresh
// prometheus registry, so several engines can live in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_function_invocations_total",
				Help: "Total number of function invocations",
			},
			[]string{"function", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weft_function_duration_seconds",
				Help:    "Duration of function invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"function"},
		),
		nodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weft_node_visits_total",
				Help: "Total number of graph node visits",
			},
			[]string{"node_id"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.invocations, m.duration, m.nodeVisits)
	return m
}

// Middleware records count, outcome and duration of every invocation.
// Items dispatched by the batch nodes are counted under their processor id.
func (m *Metrics) Middleware() registry.Middleware {
	return func(def domain.Definition, next domain.Function) domain.Function {
		id := def.ID
		return domain.FunctionFunc(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) (res domain.Result) {
			start := time.Now()
			// On panic res stays zero, so it is counted as a failure before
			// the panic continues to the caller's recover.
			defer func() {
				m.duration.WithLabelValues(id).Observe(time.Since(start).Seconds())
				outcome := OutcomeSuccess
				if !res.Success {
					outcome = OutcomeFailure
				}
				m.invocations.WithLabelValues(id, outcome).Inc()
			}()
			return next.Execute(ctx, params, ec)
		})
	}
}

// Hooks counts node visits.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.nodeVisits.WithLabelValues(e.NodeID).Inc()
		},
	}
}

// Gatherer exposes the underlying registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
