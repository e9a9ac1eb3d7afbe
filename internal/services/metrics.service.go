package services

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"riego/internal/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const METRICS_NAMESPACE = "riego"

// MetricsService owns a private Prometheus registry.
type MetricsService struct {
	registry           *prometheus.Registry
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	simulations        *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	readings           prometheus.Counter
	schedulesCompleted prometheus.Counter
}

func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "simulations_total",
			Help:      "Simulated irrigation runs.",
		}, []string{"persisted"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "validation_failures_total",
			Help:      "Rejected writes by resource.",
		}, []string{"resource"}),
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "readings_recorded_total",
			Help:      "Sensor readings stored.",
		}),
		schedulesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: METRICS_NAMESPACE,
			Name:      "schedules_completed_total",
			Help:      "Schedules closed by the expiry job.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.simulations,
		m.validationFailures,
		m.readings,
		m.schedulesCompleted,
	)

	return m
}

func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *MetricsService) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *MetricsService) RecordSimulation(persisted bool) {
	m.simulations.WithLabelValues(strconv.FormatBool(persisted)).Inc()
}

func (m *MetricsService) RecordValidationFailure(resource string) {
	m.validationFailures.WithLabelValues(resource).Inc()
}

func (m *MetricsService) RecordReading() {
	m.readings.Inc()
}

func (m *MetricsService) RecordSchedulesCompleted(count int64) {
	m.schedulesCompleted.Add(float64(count))
}

// TrackValidation counts err against resource when it is a validation error
// and returns it unchanged. Safe on a nil receiver.
func (m *MetricsService) TrackValidation(resource string, err error) error {
	var verr *types.ValidationError
	if m != nil && errors.As(err, &verr) {
		m.RecordValidationFailure(resource)
	}
	return err
}
