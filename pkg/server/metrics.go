package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// metrics holds the server's Prometheus instrumentation. A per-server
// registry keeps tests independent of the default global registry.
type metrics struct {
	registry *prometheus.Registry

	actionsTotal   *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	sessionActive  prometheus.GaugeFunc
}

func newMetrics(engine *automation.Engine) *metrics {
	registry := prometheus.NewRegistry()

	m := &metrics{
		registry: registry,
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "browserpilot",
			Name:      "actions_total",
			Help:      "Browser actions executed, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "browserpilot",
			Name:      "action_duration_seconds",
			Help:      "Browser action execution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		sessionActive: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "browserpilot",
			Name:      "session_active",
			Help:      "Whether a browser session is currently active.",
		}, func() float64 {
			if engine.Active() {
				return 1
			}
			return 0
		}),
	}

	registry.MustRegister(m.actionsTotal, m.actionDuration, m.sessionActive)
	return m
}

func (m *metrics) observeAction(kind automation.ActionKind, success bool, elapsed time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.actionsTotal.WithLabelValues(string(kind), outcome).Inc()
	m.actionDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
