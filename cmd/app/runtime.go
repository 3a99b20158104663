package main

import (
	"context"
	"fmt"

	sqliteadapter "github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/adapters/db/sqlite"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/adapters/memory"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/application"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/config"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/logging"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/sanitize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// runtime is everything one command invocation needs.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	guard    *sanitize.Guard
	store    *application.RecordStore
	closers  []func() error
}

func openRuntime(ctx context.Context, c *cli.Command) (*runtime, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db-path") {
		cfg.Storage.Path = c.String("db-path")
	}
	if c.Bool("ephemeral") {
		cfg.Storage.Ephemeral = true
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	rt := &runtime{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	var medium domain.StorageMedium
	if cfg.Storage.Ephemeral {
		medium = memory.NewMedium()
		logger.Debug("using in-memory storage")
	} else {
		sqliteMedium, err := sqliteadapter.OpenMedium(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, sqliteMedium.Close)
		medium = sqliteMedium
		logger.Debug("using sqlite storage", zap.String("path", cfg.Storage.Path))
	}

	rt.guard = sanitize.NewGuard(medium, sanitize.GuardConfig{
		Limits: sanitize.Limits{
			WarnBytes:     cfg.Storage.WarnBytes,
			HardBytes:     cfg.Storage.HardBytes,
			MaxEntryBytes: cfg.Storage.MaxEntryBytes,
		},
		Logger:  logger.Named("storage"),
		Metrics: sanitize.NewMetrics(rt.registry),
	})
	rt.store = application.NewRecordStore(
		application.NewGuardedPersistence(rt.guard, cfg.Storage.DocumentKey),
		application.WithLogger(logger.Named("store")),
	)
	rt.store.Load(ctx)

	if name := cfg.Organization.Name; name != "" && rt.store.Metadata().OrgName == "" {
		rt.store.SetOrgName(ctx, name)
	}

	if path := c.String("metrics-textfile"); path != "" {
		rt.closers = append(rt.closers, func() error {
			rt.guard.UsageBytes(context.Background())
			return prometheus.WriteToTextfile(path, rt.registry)
		})
	}
	return rt, nil
}

func (rt *runtime) Close() error {
	var firstErr error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = rt.logger.Sync()
	return firstErr
}

// withRuntime opens the runtime for the duration of one action.
func withRuntime(action func(ctx context.Context, c *cli.Command, rt *runtime) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		rt, err := openRuntime(ctx, c)
		if err != nil {
			return err
		}
		err = action(ctx, c, rt)
		if closeErr := rt.Close(); err == nil {
			err = closeErr
		}
		return err
	}
}

var errNotPersisted = fmt.Errorf("%w: storage guard refused write", application.ErrNotPersisted)

// checkPersisted fails a mutation whose write did not reach storage.
func (rt *runtime) checkPersisted() error {
	if !rt.store.Persisted() {
		return errNotPersisted
	}
	return nil
}

// clean is applied to every free-text flag before it reaches the store.
func (rt *runtime) clean(value string) string {
	return sanitize.Input(value, rt.cfg.Storage.MaxFieldLength)
}

func (rt *runtime) cleanAll(values []string) []string {
	return sanitize.Strings(values, rt.cfg.Storage.MaxFieldLength)
}
