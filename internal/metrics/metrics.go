package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "colors_coach"

// Metrics agrupa los collectors de Prometheus del servicio. Un *Metrics nil es valido y no registra nada.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	assessments     *prometheus.CounterVec
	persistFailures prometheus.Counter
	coachRequests   *prometheus.CounterVec
	coachDuration   *prometheus.HistogramVec
	coachCacheHits  *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default devuelve la instancia registrada en el registry global de Prometheus.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNewMetrics registra los collectors en reg. Si ya estaban registrados se reutilizan;
// cualquier otro error de registro entra en panico.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		httpRequests: registerOrReuse(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		)),
		httpDuration: registerOrReuse(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by method and route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)),
		assessments: registerOrReuse(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assessment",
				Name:      "submitted_total",
				Help:      "Submitted questionnaires by dominant color.",
			},
			[]string{"dominant"},
		)),
		persistFailures: registerOrReuse(reg, prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "assessment",
				Name:      "persist_failures_total",
				Help:      "Results that could not be persisted.",
			},
		)),
		coachRequests: registerOrReuse(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "coach",
				Name:      "requests_total",
				Help:      "Coach requests by mode and status.",
			},
			[]string{"mode", "status"},
		)),
		coachDuration: registerOrReuse(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "coach",
				Name:      "llm_duration_seconds",
				Help:      "Latency of LLM calls made by the coach.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"mode"},
		)),
		coachCacheHits: registerOrReuse(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "coach",
				Name:      "cache_hits_total",
				Help:      "Coach replies served from cache.",
			},
			[]string{"mode"},
		)),
	}
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Handler expone las metricas de g en formato Prometheus.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) IncAssessment(dominant string) {
	if m == nil {
		return
	}
	m.assessments.WithLabelValues(dominant).Inc()
}

func (m *Metrics) IncPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// ObserveCoach registra una llamada al LLM del coach. status es "ok" o "error".
func (m *Metrics) ObserveCoach(mode, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.coachRequests.WithLabelValues(mode, status).Inc()
	m.coachDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (m *Metrics) IncCoachCacheHit(mode string) {
	if m == nil {
		return
	}
	m.coachCacheHits.WithLabelValues(mode).Inc()
	m.coachRequests.WithLabelValues(mode, "cached").Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
