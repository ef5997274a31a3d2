package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/denoland-id/denoid/pkg/async"
	"github.com/denoland-id/denoid/pkg/bootstrap"
	"github.com/denoland-id/denoid/pkg/config"
	"github.com/denoland-id/denoid/pkg/observability"
	"github.com/denoland-id/denoid/pkg/ratelimit"
	"github.com/denoland-id/denoid/pkg/search"
	"github.com/denoland-id/denoid/pkg/server"
	"github.com/denoland-id/denoid/pkg/snapshot"
	"github.com/denoland-id/denoid/pkg/web"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	jobLogger := newJobLogger(cfg.Observability.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otel, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
		SampleRatio:    cfg.Observability.OTelSampleRatio,
	}, logger)
	if err != nil {
		return err
	}

	var registry *prometheus.Registry
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.NewMetrics(registry)
	}

	components, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return err
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc("otel", otel.Shutdown)
	shutdown.RegisterShutdownFunc("components", func(context.Context) error {
		return components.Close()
	})

	builderOpts := []snapshot.Option{
		snapshot.WithStore(components.Store),
		snapshot.WithLogger(jobLogger),
		snapshot.WithFetchTimeout(cfg.Snapshot.FetchTimeout),
	}
	if metrics != nil {
		builderOpts = append(builderOpts, snapshot.WithMetrics(metrics))
	}
	builder := snapshot.NewBuilder(components.Provider, builderOpts...)

	if err := builder.Seed(ctx); err != nil && !errors.Is(err, snapshot.ErrNotFound) {
		logger.WithError(err).Warn("failed to seed snapshot from store")
	}
	async.SafeGo(ctx, logger, cfg.Snapshot.FetchTimeout, "initial snapshot", func(ctx context.Context) error {
		_, err := builder.Rebuild(ctx)
		return err
	})

	scheduler := snapshot.NewScheduler(builder, cfg.Snapshot.Interval, jobLogger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	shutdown.RegisterShutdownFunc("scheduler", func(context.Context) error {
		scheduler.Stop()
		return nil
	})

	sites, err := siteSource(ctx, cfg.SiteConfigPath, logger)
	if err != nil {
		return err
	}
	renderer, err := web.NewRenderer(sites)
	if err != nil {
		return err
	}

	srvOpts := []server.Option{
		server.WithSearchCache(search.NewCache(cfg.Search.CacheSize, cfg.Search.CacheTTL)),
		server.WithCORSOrigins(cfg.Server.CORSOrigins),
		server.WithTracing(cfg.Observability.OTelEnabled),
	}
	if metrics != nil {
		srvOpts = append(srvOpts, server.WithMetrics(metrics))
	}
	if limiter := newRateLimiter(ctx, cfg.RateLimit, components); limiter != nil {
		ips, err := ratelimit.NewIPResolver(cfg.Server.TrustedProxies)
		if err != nil {
			return err
		}
		srvOpts = append(srvOpts, server.WithRateLimiter(limiter, ips))
	}
	srv := server.New(builder, renderer, logger, srvOpts...)

	healthOpts := []observability.HealthOption{observability.WithVersion(version)}
	if components.DB != nil {
		healthOpts = append(healthOpts, observability.WithDatabase(components.DB))
	}
	if components.Redis != nil {
		healthOpts = append(healthOpts, observability.WithRedis(components.Redis))
	}
	checker := observability.NewHealthChecker(builder, cfg.Snapshot.MaxStaleness, healthOpts...)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: server.NewHealthHandler(checker, registry),
	}
	shutdown.AddServer("http", httpServer)
	shutdown.AddServer("health", healthServer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serve(httpServer, logger) })
	g.Go(func() error { return serve(healthServer, logger) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return shutdown.Shutdown(context.Background())
	})

	logger.WithFields(map[string]interface{}{
		"addr":     httpServer.Addr,
		"health":   healthServer.Addr,
		"provider": components.Provider.Name(),
		"store":    cfg.Store.Type,
		"version":  version,
	}).Info("denoid started")

	return g.Wait()
}

func serve(s *http.Server, logger *observability.Logger) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).WithField("addr", s.Addr).Error("server failed")
		return err
	}
	return nil
}

// siteSource watches the site file when one is configured
func siteSource(ctx context.Context, path string, logger *observability.Logger) (web.SiteSource, error) {
	if path == "" {
		return web.NewStaticSite(nil), nil
	}
	store, err := web.NewSiteStore(path, logger)
	if err != nil {
		return nil, err
	}
	async.SafeGo(ctx, logger, 0, "site config watcher", store.Watch)
	return store, nil
}

// newRateLimiter shares limits through Redis when the snapshot store uses it
func newRateLimiter(ctx context.Context, cfg ratelimit.Config, components *bootstrap.Components) ratelimit.Limiter {
	if !cfg.Enabled() {
		return nil
	}
	if components.Redis != nil {
		return ratelimit.NewRedisLimiter(components.Redis, cfg, "")
	}
	limiter := ratelimit.NewMemoryLimiter(cfg)
	limiter.StartCleanup(ctx)
	return limiter
}

func newJobLogger(level observability.LogLevel) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	parsed, err := logrus.ParseLevel(level.String())
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
