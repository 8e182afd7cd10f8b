package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/iho/partyledger/internal/domain"
)

const namespace = "partyledger"

// Metrics holds all Prometheus metrics. It implements usecase.Observer.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	// Posting metrics
	PostingsTotal   *prometheus.CounterVec
	PostingDuration *prometheus.HistogramVec

	// Statement metrics
	StatementsTotal  *prometheus.CounterVec
	StatementEntries *prometheus.HistogramVec
	FallbacksTotal   prometheus.Counter

	// Consistency metrics
	DriftedAccounts prometheus.Counter
	LastDrift       *prometheus.GaugeVec

	// Outbox metrics
	OutboxPublished *prometheus.CounterVec

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them on a private registry
// together with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		PostingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "postings_total",
				Help:      "Total balance postings by operation and result",
			},
			[]string{"operation", "result"},
		),
		PostingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "posting_duration_seconds",
				Help:      "Duration of balance postings including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		StatementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statements_total",
				Help:      "Total statements built by source",
			},
			[]string{"source"},
		),
		StatementEntries: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "statement_entries",
				Help:      "Number of entries per statement",
				Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"source"},
		),
		FallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statement_fallbacks_total",
			Help:      "Statements derived from transaction tables because the journal is missing",
		}),

		DriftedAccounts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drifted_accounts_total",
			Help:      "Accounts whose stored balance disagreed with the replayed statement",
		}),
		LastDrift: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "account_drift",
				Help:      "Last observed difference between stored and replayed balance",
			},
			[]string{"account_id"},
		),

		OutboxPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_events_total",
				Help:      "Outbox events handled by the relay",
			},
			[]string{"result"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PostingsTotal,
		m.PostingDuration,
		m.StatementsTotal,
		m.StatementEntries,
		m.FallbacksTotal,
		m.DriftedAccounts,
		m.LastDrift,
		m.OutboxPublished,
		m.HTTPRequests,
		m.HTTPDuration,
		m.HTTPInFlight,
		m.RateLimitHits,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Registry exposes the registry for custom registrations and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePosting records one post, amend or void.
func (m *Metrics) ObservePosting(operation string, duration time.Duration, err error) {
	m.PostingsTotal.WithLabelValues(operation, postingResult(err)).Inc()
	m.PostingDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveStatement records a built statement and the store it came from.
func (m *Metrics) ObserveStatement(source domain.StatementSource, entries int) {
	m.StatementsTotal.WithLabelValues(string(source)).Inc()
	m.StatementEntries.WithLabelValues(string(source)).Observe(float64(entries))
	if source == domain.SourceDerived {
		m.FallbacksTotal.Inc()
	}
}

// ObserveDrift records a balance disagreement for an account.
func (m *Metrics) ObserveDrift(accountID string, difference decimal.Decimal) {
	m.DriftedAccounts.Inc()
	m.LastDrift.WithLabelValues(accountID).Set(difference.InexactFloat64())
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func postingResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrVersionConflict):
		return "conflict"
	case errors.Is(err, domain.ErrDuplicateReference):
		return "duplicate"
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrOneSidedEntry),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrKindNotAllowed),
		errors.Is(err, domain.ErrInvalidDate):
		return "invalid"
	default:
		return "error"
	}
}

// ObserveOutbox records the outcome of relaying one outbox event.
func (m *Metrics) ObserveOutbox(result string) {
	m.OutboxPublished.WithLabelValues(result).Inc()
}
