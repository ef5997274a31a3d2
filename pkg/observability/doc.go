// Package observability provides structured logging, Prometheus metrics,
// health checks, OpenTelemetry tracing, and graceful shutdown for denoid.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("generation", 3).Info("snapshot published")
//
// Request-scoped logging picks up the request ID placed in the context by
// the HTTP middleware:
//
//	observability.FromContext(r.Context()).Warn("unknown module")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//
// HTTP metrics are labelled by the matched route template, so /x/{name}
// counts as a single series.
//
// # Health Checks
//
// Readiness fails until a snapshot has been published and whenever the
// published snapshot is older than the configured staleness bound:
//
//	checker := observability.NewHealthChecker(builder, 5*time.Minute,
//		observability.WithRedis(client))
//	observability.RegisterHealthRoutes(healthRouter, checker)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "denoid",
//		Insecure:    true,
//	}, logger)
//	defer providers.Shutdown(ctx)
package observability
