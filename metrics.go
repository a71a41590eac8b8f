package logbridge

import (
	"strconv"

	"github.com/Station-Manager/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Reasons a record is dropped without a backend write.
const (
	DropSuppressed = "suppressed" // tier 0
	DropUnmapped   = "unmapped"   // level below the DEBUG band
	DropFiltered   = "filtered"   // rejected by the backend level check
)

// Metrics records the outcome of every handled record.
type Metrics interface {
	RecordDropped(reason string)
	RecordWritten(tag Tag, tier int)
	RecordFailed()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordDropped(string)   {}
func (NopMetrics) RecordWritten(Tag, int) {}
func (NopMetrics) RecordFailed()          {}

// PrometheusMetrics exports handler outcomes and, when a resolver is given,
// its cache counters.
type PrometheusMetrics struct {
	registry *prometheus.Registry
	dropped  *prometheus.CounterVec
	written  *prometheus.CounterVec
	failed   prometheus.Counter
}

// NewPrometheusMetrics registers the metrics with reg, or with a new
// registry when reg is nil. resolver may be nil.
//   - logbridge_records_dropped_total{reason}
//   - logbridge_records_written_total{level,severity}
//   - logbridge_handler_failures_total
//   - logbridge_resolver_cache_hits_total, logbridge_resolver_cache_misses_total
func NewPrometheusMetrics(reg prometheus.Registerer, resolver *Resolver) (*PrometheusMetrics, error) {
	const op errors.Op = "logbridge.NewPrometheusMetrics"

	m := &PrometheusMetrics{
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "records_dropped_total",
			Help:      "Records dropped without a backend write, by reason",
		}, []string{"reason"}),
		written: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "records_written_total",
			Help:      "Records written to the backend, by level and severity",
		}, []string{"level", "severity"}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ServiceName,
			Name:      "handler_failures_total",
			Help:      "Records whose handling failed",
		}),
	}
	if reg == nil {
		m.registry = prometheus.NewRegistry()
		reg = m.registry
	}

	collectors := []prometheus.Collector{m.dropped, m.written, m.failed}
	if resolver != nil {
		collectors = append(collectors,
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: ServiceName,
				Name:      "resolver_cache_hits_total",
				Help:      "Logger name resolutions served from cache",
			}, func() float64 { return float64(resolver.Stats().Hits) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: ServiceName,
				Name:      "resolver_cache_misses_total",
				Help:      "Logger name resolutions computed by prefix search",
			}, func() float64 { return float64(resolver.Stats().Misses) }),
		)
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, errors.New(op).Err(err).Msg(errMsgMetricRegister)
		}
	}
	return m, nil
}

// Registry returns the registry created by NewPrometheusMetrics, nil when
// the caller supplied one.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) RecordDropped(reason string) {
	m.dropped.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) RecordWritten(tag Tag, tier int) {
	m.written.WithLabelValues(tag.String(), strconv.Itoa(tier)).Inc()
}

func (m *PrometheusMetrics) RecordFailed() {
	m.failed.Inc()
}
