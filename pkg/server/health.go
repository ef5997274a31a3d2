package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/denoland-id/denoid/pkg/observability"
)

// NewHealthHandler serves liveness, readiness, and (when registry is not
// nil) Prometheus metrics on the separate health port.
func NewHealthHandler(checker *observability.HealthChecker, registry *prometheus.Registry) http.Handler {
	router := mux.NewRouter()
	observability.RegisterHealthRoutes(router, checker)
	if registry != nil {
		observability.RegisterMetricsEndpoint(router, registry)
	}
	return router
}
