// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

// Package metrics exposes Prometheus instrumentation for the HTTP layer.
//
// # Architecture
//
// Metrics are registered against a private registry owned by the Collector,
// not the package-global default. This keeps the instrumentation injectable
// and avoids double-registration panics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the HTTP metrics and their registry.
type Collector struct {
	registry *prometheus.Registry

	inFlight        prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates and registers the standard HTTP metric set.
func NewCollector() *Collector {
	collector := &Collector{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}

	collector.registry.MustRegister(
		collector.inFlight,
		collector.requestsTotal,
		collector.requestDuration,
	)

	return collector
}

// Handler returns the /metrics scrape endpoint for this collector's registry.
func (collector *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(collector.registry, promhttp.HandlerOpts{})
}

// Instrument wraps a handler with RPS, latency, and in-flight tracking.
func (collector *Collector) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		// Raw path keeps cardinality low enough for this API's fixed route set.
		path := request.URL.Path
		method := request.Method

		collector.inFlight.Inc()
		startTime := time.Now()

		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		next.ServeHTTP(recorder, request)

		duration := time.Since(startTime).Seconds()
		status := strconv.Itoa(recorder.status)

		collector.requestDuration.WithLabelValues(method, path, status).Observe(duration)
		collector.requestsTotal.WithLabelValues(method, path, status).Inc()
		collector.inFlight.Dec()
	})
}

// statusRecorder captures the response status code for labelling.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}
