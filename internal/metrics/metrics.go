// Package metrics owns the Prometheus registry and every collector the
// server exports on /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chronoflow"

// Registry holds every ChronoFlow collector. It is separate from the
// default registry so tests and embedders see only what we register.
var Registry = prometheus.NewRegistry()

// AppInfo is always 1; the store driver and version live in the labels.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application information (always 1, details in labels)",
	},
	[]string{"version", "store"},
)

// Due-event poller
var (
	PollerScansTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "scans_total",
			Help:      "Due-event scans by result (ok|error)",
		},
		[]string{"result"},
	)

	PollerEventsTriggered = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "events_triggered_total",
			Help:      "Events handed to the notifier",
		},
	)

	PollerScanDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "scan_duration_seconds",
			Help:      "Duration of one due-event scan",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	PollerRunning = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "running",
			Help:      "1 while the poller loop is running",
		},
	)
)

// RateLimitedTotal counts requests rejected with 429, by route.
var RateLimitedTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter",
	},
	[]string{"path"},
)

var initOnce sync.Once

// Init registers the Go runtime and process collectors and sets AppInfo.
// Safe to call more than once.
func Init(version, store string) {
	initOnce.Do(func() {
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	AppInfo.Reset()
	AppInfo.WithLabelValues(version, store).Set(1)
}

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
