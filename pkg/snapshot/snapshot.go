package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/denoland-id/denoid/pkg/observability"
	"github.com/denoland-id/denoid/pkg/provider"
)

// Snapshot is an immutable listing of active modules sorted by name
type Snapshot struct {
	Modules    []provider.Module `json:"modules"`
	Generation uint64            `json:"generation"`
	BuiltAt    time.Time         `json:"built_at"`
	Source     string            `json:"source"`
}

// Empty reports whether the snapshot has never been built
func (s *Snapshot) Empty() bool {
	return s.Generation == 0
}

// Lookup returns the module with the given name
func (s *Snapshot) Lookup(name string) (provider.Module, bool) {
	for _, m := range s.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return provider.Module{}, false
}

var emptySnapshot = &Snapshot{Modules: []provider.Module{}}

// Builder fetches snapshots and publishes the latest good one
type Builder struct {
	provider     provider.Provider
	store        Store
	logger       *logrus.Logger
	metrics      *observability.Metrics
	fetchTimeout time.Duration
	now          func() time.Time

	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
}

// Option configures a Builder
type Option func(*Builder)

// WithStore persists every published snapshot
func WithStore(store Store) Option {
	return func(b *Builder) {
		if store != nil {
			b.store = store
		}
	}
}

// WithLogger sets the logger for rebuild outcomes
func WithLogger(logger *logrus.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithMetrics records rebuild outcomes in Prometheus metrics
func WithMetrics(metrics *observability.Metrics) Option {
	return func(b *Builder) { b.metrics = metrics }
}

// WithFetchTimeout bounds a single provider fetch
func WithFetchTimeout(d time.Duration) Option {
	return func(b *Builder) { b.fetchTimeout = d }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a builder reading from p
func NewBuilder(p provider.Provider, opts ...Option) *Builder {
	b := &Builder{
		provider:     p,
		store:        NopStore{},
		logger:       logrus.StandardLogger(),
		fetchTimeout: 30 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Current returns the latest published snapshot, or an empty generation-0
// snapshot before the first successful build.
func (b *Builder) Current() *Snapshot {
	if s := b.current.Load(); s != nil {
		return s
	}
	return emptySnapshot
}

// Age returns how long ago the current snapshot was built.
// ok is false before the first snapshot is published.
func (b *Builder) Age() (age time.Duration, ok bool) {
	s := b.current.Load()
	if s == nil {
		return 0, false
	}
	return b.now().Sub(s.BuiltAt), true
}

// Seed publishes the stored snapshot if nothing has been built yet
func (b *Builder) Seed(ctx context.Context) error {
	stored, err := b.store.Load(ctx)
	if !errors.Is(err, ErrNotFound) {
		b.observeStore("load", err)
	}
	if err != nil {
		return err
	}

	modules, err := provider.Normalize(stored.Modules)
	if err != nil {
		return fmt.Errorf("stored snapshot is invalid: %w", err)
	}
	stored.Modules = modules

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current.Load() != nil {
		return nil
	}
	b.publish(stored)
	b.logger.WithFields(logrus.Fields{
		"generation": stored.Generation,
		"modules":    len(stored.Modules),
		"built_at":   stored.BuiltAt,
	}).Info("Seeded snapshot from store")
	return nil
}

// Rebuild fetches the active modules and publishes a new snapshot.
// On error nothing is published and the previous snapshot keeps serving.
func (b *Builder) Rebuild(ctx context.Context) (*Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, span := observability.Tracer().Start(ctx, "snapshot.rebuild",
		trace.WithAttributes(attribute.String("provider", b.provider.Name())))
	defer span.End()

	start := time.Now()
	prev := b.Current()

	fetchCtx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	modules, err := b.provider.ListModules(fetchCtx, provider.DefaultQuery())
	cancel()
	if err == nil {
		modules, err = provider.Normalize(modules)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rebuild failed")
		b.observe("error", start)
		b.logger.WithError(err).WithFields(logrus.Fields{
			"provider":   b.provider.Name(),
			"generation": prev.Generation,
		}).Warn("Snapshot rebuild failed, keeping previous snapshot")
		return nil, fmt.Errorf("snapshot rebuild failed: %w", err)
	}

	next := &Snapshot{
		Modules:    modules,
		Generation: prev.Generation + 1,
		BuiltAt:    b.now(),
		Source:     b.provider.Name(),
	}
	b.publish(next)
	b.observe("success", start)
	span.SetAttributes(
		attribute.Int64("generation", int64(next.Generation)),
		attribute.Int("modules", len(next.Modules)),
	)

	err = b.store.Save(ctx, next)
	b.observeStore("save", err)
	if err != nil {
		b.logger.WithError(err).Warn("Failed to persist snapshot")
	}

	b.logger.WithFields(logrus.Fields{
		"provider":   next.Source,
		"generation": next.Generation,
		"modules":    len(next.Modules),
		"duration":   time.Since(start).String(),
	}).Debug("Snapshot rebuilt")

	return next, nil
}

func (b *Builder) publish(s *Snapshot) {
	b.current.Store(s)
	if b.metrics != nil {
		b.metrics.ModulesTotal.Set(float64(len(s.Modules)))
		b.metrics.SnapshotGeneration.Set(float64(s.Generation))
		b.metrics.SnapshotBuiltAt.Set(float64(s.BuiltAt.Unix()))
	}
}

func (b *Builder) observe(status string, start time.Time) {
	if b.metrics == nil {
		return
	}
	b.metrics.SnapshotRefreshTotal.WithLabelValues(b.provider.Name(), status).Inc()
	b.metrics.SnapshotRefreshDuration.WithLabelValues(b.provider.Name()).Observe(time.Since(start).Seconds())
}

func (b *Builder) observeStore(operation string, err error) {
	if b.metrics == nil {
		return
	}
	if _, nop := b.store.(NopStore); nop {
		return
	}
	b.metrics.ObserveStore(operation, err)
}
