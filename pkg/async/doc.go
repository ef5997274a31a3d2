// Package async runs background tasks with panic recovery, a timeout, and
// structured error logging.
//
//	done := async.SafeGo(ctx, logger, 30*time.Second, "initial snapshot", func(ctx context.Context) error {
//		_, err := builder.Rebuild(ctx)
//		return err
//	})
//	<-done
package async
