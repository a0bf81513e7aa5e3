package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: время обработки HTTP-запроса
	RequestDuration *prometheus.HistogramVec

	// Traffic: общее кол-во запросов
	TotalRequests *prometheus.CounterVec

	// Решения движка доступа: allow / deny по разделу
	AuthzDecisions *prometheus.CounterVec

	// Audit: заполненность буфера (backpressure)
	AuditBufferFill prometheus.Gauge

	// Подключенные клиенты ленты уведомлений
	StreamClients prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrm_request_duration_seconds",
			Help:    "Histogram of request latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"route", "method", "status"}),

		TotalRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hrm_requests_total",
			Help: "Total number of processed requests.",
		}, []string{"route", "method"}),

		AuthzDecisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "hrm_authz_decisions_total",
			Help: "Authorization decisions by resource and outcome.",
		}, []string{"resource", "outcome"}),

		AuditBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "hrm_audit_buffer_utilization",
			Help: "Current number of events in audit buffer.",
		}),

		StreamClients: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "hrm_notification_stream_clients",
			Help: "Connected notification stream clients.",
		}),
	}
}
