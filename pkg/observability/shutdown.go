package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// DefaultShutdownTimeout bounds how long Shutdown waits for servers and hooks
const DefaultShutdownTimeout = 30 * time.Second

// ShutdownFunc is a function to call during shutdown
type ShutdownFunc func(context.Context) error

type namedServer struct {
	name   string
	server *http.Server
}

type namedFunc struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager drains HTTP servers first and then runs registered
// shutdown hooks in reverse registration order.
type ShutdownManager struct {
	logger  *Logger
	timeout time.Duration

	mu      sync.Mutex
	servers []namedServer
	funcs   []namedFunc
	done    bool
}

// NewShutdownManager creates a new shutdown manager
func NewShutdownManager(logger *Logger, timeout time.Duration) *ShutdownManager {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return &ShutdownManager{
		logger:  logger,
		timeout: timeout,
	}
}

// AddServer registers an HTTP server to be drained on shutdown
func (sm *ShutdownManager) AddServer(name string, server *http.Server) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.servers = append(sm.servers, namedServer{name: name, server: server})
}

// RegisterShutdownFunc registers a function to call during shutdown
func (sm *ShutdownManager) RegisterShutdownFunc(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.funcs = append(sm.funcs, namedFunc{name: name, fn: fn})
}

// Shutdown runs once; later calls return nil. The parent context is only
// used for values, the deadline comes from the manager's timeout.
func (sm *ShutdownManager) Shutdown(parent context.Context) error {
	sm.mu.Lock()
	if sm.done {
		sm.mu.Unlock()
		return nil
	}
	sm.done = true
	servers := append([]namedServer(nil), sm.servers...)
	funcs := append([]namedFunc(nil), sm.funcs...)
	sm.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), sm.timeout)
	defer cancel()

	sm.logger.Info("Starting graceful shutdown")

	var errs []error
	for _, s := range servers {
		if err := s.server.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).WithField("server", s.name).Error("HTTP server shutdown error")
			errs = append(errs, fmt.Errorf("%s server: %w", s.name, err))
			continue
		}
		sm.logger.WithField("server", s.name).Info("HTTP server shutdown complete")
	}

	for i := len(funcs) - 1; i >= 0; i-- {
		f := funcs[i]
		if err := f.fn(ctx); err != nil {
			sm.logger.WithError(err).WithField("hook", f.name).Error("Shutdown hook failed")
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	sm.logger.Info("Graceful shutdown complete")
	return nil
}
