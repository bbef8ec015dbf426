package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "meet_ws_connections",
		Help: "Current number of active websocket connections",
	})
	MessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meet_messages_total",
		Help: "Total number of chat messages broadcast",
	})
	SignalsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meet_rtc_signals_total",
		Help: "Total number of relayed signaling payloads",
	})
	FilesUploadedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meet_files_uploaded_total",
		Help: "Total number of uploaded files",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		WsConnections,
		MessagesTotal,
		SignalsTotal,
		FilesUploadedTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

func ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	HTTPRequestsTotal.With(labels).Inc()
	HTTPRequestDuration.With(labels).Observe(elapsed.Seconds())
}
