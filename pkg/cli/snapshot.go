package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/denoland-id/denoid/pkg/bootstrap"
	"github.com/denoland-id/denoid/pkg/config"
	"github.com/denoland-id/denoid/pkg/snapshot"
)

// seedOnly exposes Load of a store and drops saves, so the command can
// report save failures itself
type seedOnly struct {
	snapshot.Store
}

func (seedOnly) Save(context.Context, *snapshot.Snapshot) error { return nil }

func newSnapshotCommand(env *Env) *Command {
	cmd := &Command{
		Name:        "snapshot",
		Description: "Fetch modules from the configured provider once and save the snapshot",
		Flags:       env.flagSet("snapshot"),
	}

	out := cmd.Flags.String("out", "", "Also write the snapshot to this file")
	printJSON := cmd.Flags.Bool("print", false, "Print the snapshot as JSON")
	logLevel := cmd.Flags.String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		logger := newLogger(env, *logLevel)

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx := context.Background()
		components, err := bootstrap.Build(ctx, cfg)
		if err != nil {
			return err
		}
		defer components.Close()

		stores := []snapshot.Store{components.Store}
		if *out != "" {
			fileStore, err := snapshot.NewFileStore(*out)
			if err != nil {
				return err
			}
			stores = append(stores, fileStore)
		}

		builder := snapshot.NewBuilder(components.Provider,
			snapshot.WithStore(seedOnly{components.Store}),
			snapshot.WithLogger(logger),
			snapshot.WithFetchTimeout(cfg.Snapshot.FetchTimeout),
		)
		if err := builder.Seed(ctx); err != nil && !errors.Is(err, snapshot.ErrNotFound) {
			logger.WithError(err).Warn("Failed to load previous snapshot")
		}

		snap, err := builder.Rebuild(ctx)
		if err != nil {
			return err
		}

		var saveErrs []error
		for _, store := range stores {
			if err := store.Save(ctx, snap); err != nil {
				saveErrs = append(saveErrs, err)
			}
		}
		if err := errors.Join(saveErrs...); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"provider":   snap.Source,
			"generation": snap.Generation,
			"modules":    len(snap.Modules),
			"store":      cfg.Store.Type,
		}).Info("Snapshot saved")

		if *printJSON {
			enc := json.NewEncoder(env.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		return nil
	}

	return cmd
}

func newLogger(env *Env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(env.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
