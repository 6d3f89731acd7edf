// Package metrics exposes Prometheus collectors for the analysis pipeline
// and the HTTP API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AnalysesTotal counts completed analyses by query kind.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qpvzrr_analyses_total",
		Help: "Completed eligibility analyses by query kind.",
	}, []string{"kind"})

	// AnalysisErrors counts failed analyses by query kind.
	AnalysisErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qpvzrr_analysis_errors_total",
		Help: "Failed eligibility analyses by query kind.",
	}, []string{"kind"})

	// QPVContained counts analyses whose point fell inside a priority zone.
	QPVContained = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qpvzrr_qpv_contained_total",
		Help: "Analyses that located the subject inside a priority zone.",
	})

	// HTTPDuration observes API request latency by route and status.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qpvzrr_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(AnalysesTotal, AnalysisErrors, QPVContained, HTTPDuration)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
