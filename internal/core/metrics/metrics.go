// Package metrics exposes Prometheus collectors for naming checks.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every namekeeper collector plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	NamesChecked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "namekeeper_names_checked_total",
		Help: "Identifier occurrences validated against the rule table.",
	})
	Violations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "namekeeper_violations_total",
		Help: "Naming violations by failing stage.",
	}, []string{"stage"})
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "namekeeper_requests_total",
		Help: "NamingPolicy RPCs by method and status code.",
	}, []string{"method", "code"})
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "namekeeper_request_duration_seconds",
		Help:    "NamingPolicy RPC latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	FilesParsed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "namekeeper_files_parsed_total",
		Help: "Source files classified, by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NamesChecked,
		Violations,
		Requests,
		RequestDuration,
		FilesParsed,
	)
}

// ObserveRequest records one finished RPC.
func ObserveRequest(method, code string, elapsed time.Duration) {
	Requests.WithLabelValues(method, code).Inc()
	RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
