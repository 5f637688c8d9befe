package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	reprocessTotal    *prometheus.CounterVec
	reprocessDuration *prometheus.HistogramVec
	reprocessInFlight prometheus.Gauge
	queueLag          *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	reprocessTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docvision",
			Subsystem: "worker",
			Name:      "document_reprocess_total",
			Help:      "Total reprocessed documents by status.",
		},
		[]string{"service", "status"},
	)
	reprocessDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docvision",
			Subsystem: "worker",
			Name:      "document_reprocess_duration_seconds",
			Help:      "Document reprocessing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	reprocessInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docvision",
			Subsystem: "worker",
			Name:      "document_reprocess_in_flight",
			Help:      "Number of in-flight reprocess tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docvision",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between reprocess request and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(reprocessTotal, reprocessDuration, reprocessInFlight, queueLag)

	return &WorkerMetrics{
		registry:          registry,
		reprocessTotal:    reprocessTotal,
		reprocessDuration: reprocessDuration,
		reprocessInFlight: reprocessInFlight,
		queueLag:          queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.reprocessInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.reprocessInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.reprocessTotal.WithLabelValues(service, status).Inc()
	m.reprocessDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
