// Package snapshot builds and serves the frozen module listing.
//
// # Overview
//
// A Snapshot is the complete, filtered and sorted set of active modules that
// every page render reads from. The Builder fetches a fresh set from a
// provider and publishes it with a single atomic pointer swap, so readers
// always see either the old snapshot or the new one and never a mix. A
// failed fetch publishes nothing: the previous snapshot keeps serving until a
// later regeneration succeeds.
//
// # Scheduling
//
// The Scheduler runs Rebuild on a fixed interval with robfig/cron. Runs never
// overlap; a slow fetch causes the next tick to be skipped.
//
//	builder := snapshot.NewBuilder(p, snapshot.WithStore(store), snapshot.WithLogger(log))
//	if err := builder.Seed(ctx); err != nil {
//		log.WithError(err).Warn("no stored snapshot")
//	}
//	sched := snapshot.NewScheduler(builder, 10*time.Second, log)
//	sched.Start(ctx)
//	defer sched.Stop()
//
// # Stores
//
// The last good snapshot can be persisted so a restarted process serves data
// before its first fetch completes:
//
//   - FileStore: a JSON file replaced atomically
//   - RedisStore: one key in Redis, shared between replicas
//   - S3Store: one object in an S3 bucket
//   - NopStore: persistence disabled
package snapshot
