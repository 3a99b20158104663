package sanitize

import "github.com/prometheus/client_golang/prometheus"

const (
	resultOK            = "ok"
	resultEntryTooLarge = "entry_too_large"
	resultAtLimit       = "at_limit"
	resultMediumError   = "medium_error"
	resultEncodeError   = "encode_error"
)

// Metrics records guard outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	writes *prometheus.CounterVec
	usage  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cmmc",
			Subsystem: "storage",
			Name:      "writes_total",
			Help:      "Storage guard write attempts by result.",
		}, []string{"result"}),
		usage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cmmc",
			Subsystem: "storage",
			Name:      "usage_bytes",
			Help:      "Accounted size of all storage entries at the last measurement.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.writes, m.usage)
	}
	return m
}

func (m *Metrics) write(result string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(result).Inc()
}

func (m *Metrics) observeUsage(bytes int64) {
	if m == nil {
		return
	}
	m.usage.Set(float64(bytes))
}
