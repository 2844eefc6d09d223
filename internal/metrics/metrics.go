// Package metrics exposes the alarm clock's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/alarm-clock/internal/feedback"
	"github.com/sweeney/alarm-clock/internal/logic"
)

const metricPrefix = "alarmclock_"

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ticks          prometheus.Counter
	tickLatency    prometheus.Histogram
	events         *prometheus.CounterVec
	steps          *prometheus.CounterVec
	clockErrors    prometheus.Counter
	timeSync       *prometheus.CounterVec
	publishErrors  prometheus.Counter
	feedbackActive prometheus.Gauge
	mqttConnected  prometheus.Gauge
}

// New creates and registers every collector, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "ticks_total",
			Help: "Control loop ticks",
		}),
		tickLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "tick_duration_seconds",
			Help:    "Control loop tick duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "events_total",
			Help: "Alarm events by type",
		}, []string{"type"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "feedback_steps_total",
			Help: "Feedback steps performed by kind",
		}, []string{"kind"}),
		clockErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "clock_read_errors_total",
			Help: "Failed clock reads",
		}),
		timeSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "time_sync_total",
			Help: "Network time sync attempts by result",
		}, []string{"result"}),
		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "publish_errors_total",
			Help: "Failed MQTT publishes",
		}),
		feedbackActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "feedback_active",
			Help: "1 while the alarm is sounding",
		}),
		mqttConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "mqtt_connected",
			Help: "1 while connected to the MQTT broker",
		}),
	}
	m.registry.MustRegister(
		m.ticks,
		m.tickLatency,
		m.events,
		m.steps,
		m.clockErrors,
		m.timeSync,
		m.publishErrors,
		m.feedbackActive,
		m.mqttConnected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WatchButton exports the registered and debounced edge counts of a button.
// stats is read at scrape time.
func (m *Metrics) WatchButton(name string, stats func() (captured, dropped uint64)) {
	edges := func(result string, pick func(captured, dropped uint64) uint64) prometheus.CounterFunc {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        metricPrefix + "button_edges_total",
			Help:        "Button edges by result",
			ConstLabels: prometheus.Labels{"button": name, "result": result},
		}, func() float64 {
			return float64(pick(stats()))
		})
	}
	m.registry.MustRegister(
		edges("registered", func(c, _ uint64) uint64 { return c }),
		edges("debounced", func(_, d uint64) uint64 { return d }),
	)
}

// ObserveTick records one control loop tick.
func (m *Metrics) ObserveTick(step feedback.StepKind, took time.Duration) {
	m.ticks.Inc()
	m.tickLatency.Observe(took.Seconds())
	if step != feedback.StepIdle {
		m.steps.WithLabelValues(step.String()).Inc()
	}
}

// Event counts an emitted alarm event.
func (m *Metrics) Event(t logic.EventType) {
	m.events.WithLabelValues(string(t)).Inc()
}

// ClockError counts a failed clock read.
func (m *Metrics) ClockError() {
	m.clockErrors.Inc()
}

// TimeSync counts a network time sync attempt.
func (m *Metrics) TimeSync(ok bool) {
	result := resultSuccess
	if !ok {
		result = resultError
	}
	m.timeSync.WithLabelValues(result).Inc()
}

// PublishError counts a failed MQTT publish.
func (m *Metrics) PublishError() {
	m.publishErrors.Inc()
}

// SetFeedbackActive sets the alarm sounding gauge.
func (m *Metrics) SetFeedbackActive(active bool) {
	m.feedbackActive.Set(boolFloat(active))
}

// SetMQTTConnected sets the broker connection gauge.
func (m *Metrics) SetMQTTConnected(connected bool) {
	m.mqttConnected.Set(boolFloat(connected))
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
