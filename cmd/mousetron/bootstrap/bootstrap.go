// Package bootstrap builds the components mousetron commands share: the
// effective configuration, the logger, the memory engine, the execution
// history store and the event publisher.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/pkg/artifacts"
	"github.com/aircode610/MouseTron/pkg/catalog"
	"github.com/aircode610/MouseTron/pkg/config"
	"github.com/aircode610/MouseTron/pkg/dotdir"
	"github.com/aircode610/MouseTron/pkg/eventstream"
	"github.com/aircode610/MouseTron/pkg/eventstream/kafka"
	"github.com/aircode610/MouseTron/pkg/eventstream/nop"
	"github.com/aircode610/MouseTron/pkg/logger"
	"github.com/aircode610/MouseTron/pkg/memory/local"
	"github.com/aircode610/MouseTron/pkg/memory/persist"
	"github.com/aircode610/MouseTron/pkg/service"
	"github.com/aircode610/MouseTron/pkg/storage"
	"github.com/aircode610/MouseTron/pkg/storage/inmemory"
	"github.com/aircode610/MouseTron/pkg/storage/postgres"
	"github.com/aircode610/MouseTron/pkg/storage/sqlite"
)

// Config resolves the effective configuration for cmd: defaults, then
// config.toml, then MOUSETRON_* environment, then the given registered flags.
func Config(cmd *cobra.Command, flagKeys ...string) (*config.Config, error) {
	v, err := config.InitViper(ConfigDir(cmd))
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	cfg, err := config.FromViper(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ConfigDir returns the --config-dir override, if any.
func ConfigDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("config-dir")
	return dir
}

// Logger builds the command logger from the --debug flag. Output goes to
// stderr so command output on stdout stays machine readable.
func Logger(cmd *cobra.Command, extra ...io.Writer) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	term := logger.New(
		logger.WithDebug(debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)
	if len(extra) == 0 {
		return term
	}
	file := logger.New(
		logger.WithDebug(debug),
		logger.WithJSON(true),
		logger.WithWriters(extra...),
	)
	return logger.Multi(term, file)
}

// MemoryConfig maps the configured capacities onto the engine config.
func MemoryConfig(cfg *config.Config) local.Config {
	return local.Config{
		K:           cfg.Memory.K,
		T:           cfg.Memory.T,
		NR:          cfg.Memory.NR,
		NF:          cfg.Memory.NF,
		NS:          cfg.Memory.NS,
		MaxBlockLen: cfg.Memory.MaxBlockLen,
	}
}

// Memory creates the engine over the resolved containers directory and loads
// its persisted state.
func Memory(ctx context.Context, cmd *cobra.Command, cfg *config.Config, log *slog.Logger, opts ...local.Option) (*local.Driver, error) {
	dir, err := dotdir.NewManager().ContainersDir(ConfigDir(cmd), cfg.Memory.ContainersDir)
	if err != nil {
		return nil, err
	}
	store, err := persist.NewStore(dir)
	if err != nil {
		return nil, err
	}

	opts = append([]local.Option{local.WithLogger(log), local.WithStore(store)}, opts...)
	driver, err := local.New(MemoryConfig(cfg), opts...)
	if err != nil {
		return nil, err
	}
	if err := driver.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading memory from %s: %w", dir, err)
	}
	return driver, nil
}

// Catalog loads the configured tool description catalog. An unset path yields
// an empty catalog.
func Catalog(cfg *config.Config, log *slog.Logger) (*catalog.Catalog, error) {
	c, err := catalog.Load(cfg.Catalog.Path, log)
	if err != nil {
		return nil, fmt.Errorf("loading tool catalog: %w", err)
	}
	return c, nil
}

// Artifacts returns the artifact writer, or nil when artifacts are disabled.
func Artifacts(cfg *config.Config) (*artifacts.Writer, error) {
	if cfg.Artifacts.Dir == "" {
		return nil, nil
	}
	return artifacts.NewWriter(cfg.Artifacts.Dir)
}

// Storage opens the execution history store: PostgreSQL when a DSN is set,
// SQLite when a path is set, in-memory otherwise.
func Storage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Driver, error) {
	switch {
	case cfg.Storage.PostgresDSN != "":
		driver, err := postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return driver, nil

	case cfg.Storage.SQLitePath != "":
		driver, err := sqlite.NewDriver(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		log.Info("using SQLite storage", "path", cfg.Storage.SQLitePath)
		return driver, nil
	}

	log.Info("using in-memory storage")
	return inmemory.NewDriver(), nil
}

// Publisher creates the configured event publisher.
func Publisher(cfg *config.Config, log *slog.Logger) (eventstream.Publisher, error) {
	switch cfg.Events.Provider {
	case "kafka":
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
			Logger:  log,
		})
		if err != nil {
			return nil, err
		}
		log.Info("publishing execution events to kafka",
			"brokers", cfg.Events.Brokers,
			"topic", cfg.Events.Topic,
		)
		return p, nil
	default:
		return nop.NewPublisher(), nil
	}
}

// HasPersistentStorage reports whether a database is configured for the
// execution history.
func HasPersistentStorage(cfg *config.Config) bool {
	return cfg.Storage.PostgresDSN != "" || cfg.Storage.SQLitePath != ""
}

// LocalService builds a service over the on-disk memory for one-shot
// commands. History is only stored when a database is configured, and events
// are not published outside "mousetron serve".
func LocalService(ctx context.Context, cmd *cobra.Command, cfg *config.Config, log *slog.Logger) (*service.Service, error) {
	cat, err := Catalog(cfg, log)
	if err != nil {
		return nil, err
	}
	mem, err := Memory(ctx, cmd, cfg, log, local.WithDescriber(cat))
	if err != nil {
		return nil, err
	}

	var store storage.Driver
	if HasPersistentStorage(cfg) {
		if store, err = Storage(ctx, cfg, log); err != nil {
			_ = mem.Close()
			return nil, err
		}
	}

	writer, err := Artifacts(cfg)
	if err != nil {
		_ = mem.Close()
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	return service.New(service.Config{
		Memory:      mem,
		Storage:     store,
		Artifacts:   writer,
		MaxBlockLen: mem.Config().MaxBlockLen,
		Logger:      log,
	})
}
