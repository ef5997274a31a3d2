package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
)

// SnapshotSource reports how old the currently served snapshot is.
// ok is false until a snapshot has been published.
type SnapshotSource interface {
	Age() (age time.Duration, ok bool)
}

// HealthChecker provides health check functionality
type HealthChecker struct {
	snapshots    SnapshotSource
	maxStaleness time.Duration
	db           *sql.DB
	redis        *redis.Client
	version      string
}

// HealthOption configures optional dependencies of a HealthChecker
type HealthOption func(*HealthChecker)

// WithDatabase adds a SQL provider database to readiness checks
func WithDatabase(db *sql.DB) HealthOption {
	return func(h *HealthChecker) { h.db = db }
}

// WithRedis adds the Redis snapshot store to readiness checks
func WithRedis(client *redis.Client) HealthOption {
	return func(h *HealthChecker) { h.redis = client }
}

// WithVersion sets the version reported by health responses
func WithVersion(version string) HealthOption {
	return func(h *HealthChecker) { h.version = version }
}

// NewHealthChecker creates a new health checker. A zero maxStaleness
// disables the staleness check.
func NewHealthChecker(snapshots SnapshotSource, maxStaleness time.Duration, opts ...HealthOption) *HealthChecker {
	h := &HealthChecker{
		snapshots:    snapshots,
		maxStaleness: maxStaleness,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the health of a single dependency
type DependencyStatus struct {
	Status    string        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ms,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Liveness returns a simple liveness probe (always returns 200 if server is running)
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness returns a readiness probe (checks the snapshot and dependencies)
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")

	// Return 503 if unhealthy, 200 if healthy or degraded
	if status.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(status)
}

// Check performs a comprehensive health check
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      h.version,
		Dependencies: make(map[string]DependencyStatus),
	}

	if h.snapshots != nil {
		snapStatus := h.checkSnapshot()
		status.Dependencies["snapshot"] = snapStatus
		if snapStatus.Status == StatusUnhealthy {
			status.Status = StatusUnhealthy
		}
	}

	// The SQL provider is only consulted on rebuilds, so an outage degrades
	// freshness but the last snapshot still serves.
	if h.db != nil {
		dbStatus := h.checkDatabase(ctx)
		status.Dependencies["database"] = dbStatus
		if dbStatus.Status != StatusHealthy && status.Status != StatusUnhealthy {
			status.Status = StatusDegraded
		}
	}

	if h.redis != nil {
		redisStatus := h.checkRedis(ctx)
		status.Dependencies["redis"] = redisStatus
		if redisStatus.Status == StatusUnhealthy && status.Status != StatusUnhealthy {
			status.Status = StatusDegraded
		}
	}

	return status
}

func (h *HealthChecker) checkSnapshot() DependencyStatus {
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}

	age, ok := h.snapshots.Age()
	if !ok {
		status.Status = StatusUnhealthy
		status.Message = "no snapshot published yet"
		return status
	}
	status.Latency = age

	if h.maxStaleness > 0 && age > h.maxStaleness {
		status.Status = StatusUnhealthy
		status.Message = "snapshot is stale: " + age.Truncate(time.Second).String()
	}

	return status
}

// checkDatabase checks the SQL provider database
func (h *HealthChecker) checkDatabase(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}

	err := h.db.PingContext(ctx)
	status.Latency = time.Since(start)

	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
		return status
	}

	stats := h.db.Stats()
	if stats.MaxOpenConnections > 0 && stats.OpenConnections >= stats.MaxOpenConnections {
		status.Status = StatusDegraded
		status.Message = "connection pool exhausted"
	}

	return status
}

// checkRedis checks Redis health
func (h *HealthChecker) checkRedis(ctx context.Context) DependencyStatus {
	start := time.Now()
	status := DependencyStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}

	err := h.redis.Ping(ctx).Err()
	status.Latency = time.Since(start)

	if err != nil {
		status.Status = StatusUnhealthy
		status.Message = err.Error()
	}

	return status
}

// RegisterHealthRoutes registers health check endpoints
func RegisterHealthRoutes(router *mux.Router, checker *HealthChecker) {
	router.HandleFunc("/healthz", checker.Liveness).Methods(http.MethodGet)
	router.HandleFunc("/readyz", checker.Readiness).Methods(http.MethodGet)
}
