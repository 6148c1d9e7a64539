package app

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/walletscope/internal/domain"
)

// Drop reasons recorded by Metrics.EventDropped.
const (
	DropDisconnected = "disconnected"
	DropWriteFailed  = "write_failed"
	DropClosed       = "closed"
	DropQueueFull    = "queue_full"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	mu sync.Mutex

	eventsEmitted    *prometheus.CounterVec
	eventsDropped    *prometheus.CounterVec
	diagnostics      *prometheus.CounterVec
	enrichments      *prometheus.CounterVec
	channelConnected prometheus.Gauge

	registerer prometheus.Registerer
	registered bool
}

func newCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletscope",
			Subsystem: "sdk",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewMetrics creates the collectors. A nil registerer uses a private
// registry so embedding the SDK never touches the global one.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}

	return &Metrics{
		registerer:    registerer,
		eventsEmitted: newCounterVec("events_emitted_total", "Envelopes written to the collector channel", []string{"event"}),
		eventsDropped: newCounterVec("events_dropped_total", "Envelopes dropped before reaching the collector", []string{"event", "reason"}),
		diagnostics:   newCounterVec("diagnostics_total", "Diagnostic reports sent to the collector", []string{"level"}),
		enrichments:   newCounterVec("enrichments_total", "Transaction enrichments by outcome", []string{"result"}),
		channelConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletscope",
			Subsystem: "sdk",
			Name:      "channel_connected",
			Help:      "1 while the collector channel has a live connection",
		}),
	}
}

// Register registers the collectors. Safe to call multiple times.
func (m *Metrics) Register() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	collectors := []prometheus.Collector{
		m.eventsEmitted,
		m.eventsDropped,
		m.diagnostics,
		m.enrichments,
		m.channelConnected,
	}

	for _, c := range collectors {
		if err := m.registerer.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	m.registered = true
	return nil
}

func (m *Metrics) EventEmitted(event domain.Event) {
	if m == nil {
		return
	}
	m.eventsEmitted.WithLabelValues(event.String()).Inc()
}

func (m *Metrics) EventDropped(event domain.Event, reason string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(event.String(), reason).Inc()
}

func (m *Metrics) DiagnosticReported(level domain.LogLevel) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(string(level)).Inc()
}

func (m *Metrics) EnrichmentFinished(result string) {
	if m == nil {
		return
	}
	m.enrichments.WithLabelValues(result).Inc()
}

func (m *Metrics) SetChannelConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.channelConnected.Set(1)
	} else {
		m.channelConnected.Set(0)
	}
}
