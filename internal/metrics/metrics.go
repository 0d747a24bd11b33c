// Package metrics exposes Prometheus counters for the dispatch engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. It satisfies
// the dispatch engine's metrics interface.
type Metrics struct {
	dispatchSucceeded prometheus.Counter
	dispatchFailed    prometheus.Counter
	sendFailed        prometheus.Counter
	statusInitialized prometheus.Counter
	statusSaveFailed  prometheus.Counter
}

// New creates metrics registered on reg. A nil registerer uses the default
// Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		dispatchSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "regnotify_dispatch_succeeded_total",
			Help: "Total number of dispatch runs where every owed notification was sent",
		}),
		dispatchFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "regnotify_dispatch_failed_total",
			Help: "Total number of dispatch runs aborted by a fatal error",
		}),
		sendFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "regnotify_send_failed_total",
			Help: "Total number of individual notification sends that failed",
		}),
		statusInitialized: factory.NewCounter(prometheus.CounterOpts{
			Name: "regnotify_status_initialized_total",
			Help: "Total number of delivery status documents initialized or rebuilt",
		}),
		statusSaveFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "regnotify_status_save_failed_total",
			Help: "Total number of delivery status persistence failures",
		}),
	}
}

// DispatchSucceeded records a dispatch run that sent everything it owed.
func (m *Metrics) DispatchSucceeded() { m.dispatchSucceeded.Inc() }

// DispatchFailed records a dispatch run aborted by a fatal error.
func (m *Metrics) DispatchFailed() { m.dispatchFailed.Inc() }

// SendFailed records a single failed notification send.
func (m *Metrics) SendFailed() { m.sendFailed.Inc() }

// StatusInitialized records a delivery status document being built.
func (m *Metrics) StatusInitialized() { m.statusInitialized.Inc() }

// StatusSaveFailed records a failed delivery status save.
func (m *Metrics) StatusSaveFailed() { m.statusSaveFailed.Inc() }
