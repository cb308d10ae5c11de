// Package servecmder provides the serve command running the MouseTron API
// and MCP server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/api"
	"github.com/aircode610/MouseTron/api/mcp"
	"github.com/aircode610/MouseTron/cmd/mousetron/bootstrap"
	"github.com/aircode610/MouseTron/pkg/config"
	"github.com/aircode610/MouseTron/pkg/memory/local"
	"github.com/aircode610/MouseTron/pkg/metrics"
	"github.com/aircode610/MouseTron/pkg/service"
	"github.com/aircode610/MouseTron/pkg/storage"
	"github.com/aircode610/MouseTron/pkg/worker"
)

type serveCommander struct {
	listen        string
	sqlitePath    string
	postgresDSN   string
	containersDir string
	catalogPath   string
	artifactsDir  string
	eventsProv    string
	eventsTopic   string
	windowSize    uint
	tableSize     uint
	logFile       string
}

var serveFlags = []string{
	config.FlagAPIListen,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagContainersDir,
	config.FlagCatalog,
	config.FlagArtifactsDir,
	config.FlagEventsProv,
	config.FlagEventsTopic,
	config.FlagWindowSize,
	config.FlagTableSize,
}

const serveLongDesc string = `Run the MouseTron server.

The server accepts completed executions on POST /api/tools, learns tool
combinations from them and serves recommendations on
GET /api/recommendations. The same engine is exposed to agents as MCP tools
on /mcp, and prometheus metrics are served on /metrics.

Execution history is kept in PostgreSQL (--postgres), SQLite (--sqlite) or
in memory. Executions can optionally be published to Kafka.`

const serveShortDesc string = "Run the MouseTron server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagContainersDir, &cmder.containersDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagCatalog, &cmder.catalogPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagArtifactsDir, &cmder.artifactsDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsProv, &cmder.eventsProv)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &cmder.eventsTopic)
	config.AddUintFlag(cmd, config.Flags, config.FlagWindowSize, &cmder.windowSize)
	config.AddUintFlag(cmd, config.Flags, config.FlagTableSize, &cmder.tableSize)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var extra []io.Writer
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		extra = append(extra, f)
	}
	log := bootstrap.Logger(cmd, extra...)

	cfg, err := bootstrap.Config(cmd, serveFlags...)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()

	cat, err := bootstrap.Catalog(cfg, log)
	if err != nil {
		return err
	}
	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		go func() {
			if err := cat.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("catalog watch stopped", "error", err)
			}
		}()
	}

	mem, err := bootstrap.Memory(ctx, cmd, cfg, log,
		local.WithDescriber(cat),
		local.WithObserver(recorder),
	)
	if err != nil {
		return err
	}

	store, err := bootstrap.Storage(ctx, cfg, log)
	if err != nil {
		_ = mem.Close()
		return err
	}

	svc, err := c.newService(cfg, mem, store, recorder, log)
	if err != nil {
		_ = mem.Close()
		_ = store.Close()
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	mcpServer, err := mcp.NewServer(mcp.Config{Service: svc, Logger: log})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer := api.NewServer(api.Config{
		ListenAddr: cfg.API.Listen,
		Metrics:    recorder,
		MCPHandler: mcpServer.Handler(),
	}, svc, log)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("received signal, shutting down")
		return apiServer.Shutdown()
	}
}

func (c *serveCommander) newService(cfg *config.Config, mem *local.Driver, store storage.Driver, recorder *metrics.Recorder, log *slog.Logger) (*service.Service, error) {
	writer, err := bootstrap.Artifacts(cfg)
	if err != nil {
		return nil, err
	}

	publisher, err := bootstrap.Publisher(cfg, log)
	if err != nil {
		return nil, err
	}
	pool, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		OnDrop:    recorder.EventDropped,
		Logger:    log,
	})
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return service.New(service.Config{
		Memory:      mem,
		Storage:     store,
		Artifacts:   writer,
		Pool:        pool,
		MaxBlockLen: mem.Config().MaxBlockLen,
		Observer:    recorder,
		Logger:      log,
	})
}
