package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/terraincognita07/cyclecast/internal/services"
)

const namespace = "cyclecast"

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Recorder owns a private registry so each process run exports only its own
// observations.
type Recorder struct {
	registry *prometheus.Registry

	insightsComputed prometheus.Counter
	clinicalFlags    *prometheus.CounterVec
	engineDuration   prometheus.Histogram
	remindersSent    *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	recorder := &Recorder{
		registry: prometheus.NewRegistry(),
		insightsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_computed_total",
			Help:      "Number of engine runs over a snapshot.",
		}),
		clinicalFlags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clinical_flags_total",
			Help:      "Clinical flags emitted, by type and severity.",
		}, []string{"type", "severity"}),
		engineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_duration_seconds",
			Help:      "Time spent computing insights.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Reminder deliveries, by kind and outcome.",
		}, []string{"kind", "status"}),
	}

	recorder.registry.MustRegister(
		recorder.insightsComputed,
		recorder.clinicalFlags,
		recorder.engineDuration,
		recorder.remindersSent,
	)
	return recorder
}

func (recorder *Recorder) Registry() *prometheus.Registry {
	return recorder.registry
}

func (recorder *Recorder) ObserveInsights(insights services.Insights, elapsed time.Duration) {
	recorder.insightsComputed.Inc()
	recorder.engineDuration.Observe(elapsed.Seconds())
	for _, flag := range insights.Flags {
		recorder.clinicalFlags.WithLabelValues(string(flag.Type), string(flag.Severity)).Inc()
	}
}

func (recorder *Recorder) ObserveReminder(kind string, err error) {
	status := StatusSent
	if err != nil {
		status = StatusFailed
	}
	recorder.remindersSent.WithLabelValues(kind, status).Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
// An empty path is a no-op.
func (recorder *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, recorder.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
