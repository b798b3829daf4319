// Package servecmder provides the serve command that runs the legalqa HTTP
// API and its MCP endpoint.
package servecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/legalqa/api"
	"github.com/papercomputeco/legalqa/cmd/legalqa/bootstrap"
	"github.com/papercomputeco/legalqa/pkg/config"
	"github.com/papercomputeco/legalqa/pkg/logger"
)

type ServeCommander struct {
	flags config.FlagSet

	dataDir         string
	engineKind      string
	listen          string
	staticDir       string
	historyProvider string
	sqlitePath      string
	postgresDSN     string
	eventsProvider  string
	kafkaBrokers    string
	logFile         string

	cfg       *config.Config
	configDir string
	debug     bool
	logger    *slog.Logger
}

const serveLongDesc string = `Run the legalqa API server.

The server loads the corpus from <data-dir>/texts/*.txt (falling back to a
small built-in set of articles), answers questions over HTTP and exposes the
same operations as MCP tools at /mcp.

Routes:
  GET  /ping                 Liveness check
  GET  /api/health           Service status
  POST /api/ask              Ask a question
  GET  /api/retrieve         List sources for a question
  GET  /api/history          Recent exchanges
  POST /api/clear-history    Forget every exchange

Examples:
  legalqa serve
  legalqa serve --data-dir ./data --listen :8001
  legalqa serve --engine embedding --history-provider sqlite`

const serveShortDesc string = "Run the legalqa API server"

var serveFlags = []string{
	config.FlagDataDir,
	config.FlagEngine,
	config.FlagAPIListen,
	config.FlagStaticDir,
	config.FlagHistoryProvider,
	config.FlagHistorySQLite,
	config.FlagHistoryPostgres,
	config.FlagEventsProvider,
	config.FlagEventsBrokers,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{
		flags: config.Registry,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, cmder.flags, serveFlags)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, cmder.flags, config.FlagDataDir, &cmder.dataDir)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEngine, &cmder.engineKind)
	config.AddStringFlag(cmd, cmder.flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, cmder.flags, config.FlagStaticDir, &cmder.staticDir)
	config.AddStringFlag(cmd, cmder.flags, config.FlagHistoryProvider, &cmder.historyProvider)
	config.AddStringFlag(cmd, cmder.flags, config.FlagHistorySQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, cmder.flags, config.FlagHistoryPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, cmder.flags, config.FlagEventsBrokers, &cmder.kafkaBrokers)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		c.logger = logger.Multi(c.logger, logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(f)))
	}

	svc, report, err := bootstrap.NewService(ctx, &bootstrap.Options{
		Config:    c.cfg,
		ConfigDir: c.configDir,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("building service: %w", err)
	}
	defer svc.Close()

	if report.Fallback {
		c.logger.Warn("serving built-in articles", "data_dir", c.cfg.Corpus.DataDir)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr:   c.cfg.API.Listen,
		StaticDir:    c.cfg.API.StaticDir,
		PreviewChars: c.cfg.History.PreviewChars,
		MCPDisabled:  c.cfg.API.MCPDisabled,
	}, svc, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}
