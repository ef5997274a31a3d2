package async

import (
	"context"
	"time"

	"github.com/denoland-id/denoid/pkg/observability"
)

// SafeGo runs fn in a goroutine with panic recovery and error logging. A
// positive timeout bounds fn's context. The returned channel is closed once
// fn has returned or panicked.
//
// Example:
//
//	async.SafeGo(ctx, logger, 30*time.Second, "initial snapshot", func(ctx context.Context) error {
//	    _, err := builder.Rebuild(ctx)
//	    return err
//	})
func SafeGo(parentCtx context.Context, logger *observability.Logger, timeout time.Duration, taskName string, fn func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		var ctx context.Context
		var cancel context.CancelFunc
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(parentCtx, timeout)
		} else {
			ctx, cancel = context.WithCancel(parentCtx)
		}
		defer cancel()

		defer observability.RecoverPanic(logger, taskName)

		if err := fn(ctx); err != nil {
			logger.WithError(err).WithField("task", taskName).Warn("background task failed")
		}
	}()
	return done
}
