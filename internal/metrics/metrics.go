package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wifiwatch/internal/models"
)

// Collector publishes live engine state to prometheus. A nil Collector
// is valid and records nothing, so the engine can run without metrics.
type Collector struct {
	registry      *prometheus.Registry
	monitoring    prometheus.Gauge
	lastLatency   prometheus.Gauge
	probesTotal   *prometheus.CounterVec
	restartsTotal prometheus.Counter
}

// NewCollector builds a collector on its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		monitoring: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wifiwatch_monitoring",
			Help: "Whether the monitor loop is running (1) or stopped (0).",
		}),
		lastLatency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wifiwatch_last_latency_ms",
			Help: "Most recent probe round-trip time in milliseconds (-1 when the probe failed).",
		}),
		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wifiwatch_probes_total",
			Help: "Probes by resulting status.",
		}, []string{"status"}),
		restartsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wifiwatch_radio_restarts_total",
			Help: "Successful radio recovery cycles.",
		}),
	}
	c.registry.MustRegister(c.monitoring, c.lastLatency, c.probesTotal, c.restartsTotal)
	return c
}

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// SetMonitoring records the run state of the loop.
func (c *Collector) SetMonitoring(running bool) {
	if c == nil {
		return
	}
	v := 0.0
	if running {
		v = 1
	}
	c.monitoring.Set(v)
}

// RecordPing records one probe outcome.
func (c *Collector) RecordPing(result models.PingResult) {
	if c == nil {
		return
	}
	c.lastLatency.Set(float64(result.LatencyMS))
	c.probesTotal.WithLabelValues(string(result.Status)).Inc()
}

// RecordRestart counts one successful recovery cycle.
func (c *Collector) RecordRestart() {
	if c == nil {
		return
	}
	c.restartsTotal.Inc()
}
