package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeBusy    = "busy"
)

// CartMetrics records cart mutation, cache and catalog event activity.
// A nil *CartMetrics is valid and records nothing.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	cache     *prometheus.CounterVec
	events    *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	m := &CartMetrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_mutation_total",
			Help: "Cart mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cart_mutation_duration_seconds",
			Help:    "Duration of cart mutations in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_view_cache_total",
			Help: "Cart view cache lookups by result.",
		}, []string{"result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_catalog_events_total",
			Help: "Catalog events handled by the cart worker.",
		}, []string{"event_type", "outcome"}),
	}
	reg.MustRegister(m.mutations, m.duration, m.cache, m.events)
	return m
}

// ObserveMutation counts one mutation and records its duration.
func (m *CartMetrics) ObserveMutation(operation, outcome string, took time.Duration) {
	if m == nil || m.mutations == nil {
		return
	}
	op := normalizeLabel(operation)
	m.mutations.WithLabelValues(op, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(op).Observe(took.Seconds())
}

func (m *CartMetrics) CacheHit() {
	m.incCache("hit")
}

func (m *CartMetrics) CacheMiss() {
	m.incCache("miss")
}

func (m *CartMetrics) incCache(result string) {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}

// IncEvent counts a consumed catalog event.
func (m *CartMetrics) IncEvent(eventType, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
