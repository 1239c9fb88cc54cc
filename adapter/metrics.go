package adapter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the process-wide Prometheus registry, including
// the transport counters, for mounting on an admin endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
