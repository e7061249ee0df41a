package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"atelier/internal/handler"
	"atelier/internal/hub"
	"atelier/internal/metrics"
	"atelier/internal/repository/sqlite"
	"atelier/internal/service"
	"atelier/internal/watcher"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var addr, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the canvas HTTP server",
		Long: `Run the canvas HTTP server.

Serves the REST API under /api, live events on /events, Prometheus metrics
on /metrics and a liveness probe on /healthz. Layout profiles in the config
file are reloaded when the file changes. SIGINT or SIGTERM shut the server
down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g, addr, dbPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	return cmd
}

func runServe(ctx context.Context, g *globalOptions, addr, dbPath string) error {
	logger := loggerFromContext(ctx)

	cfg, cfgPath, err := g.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	g.applyLogLevel(logger, cfg)

	if cfgPath == "" {
		logger.Info("no config file found, using defaults")
	} else {
		logger.Info("config loaded", "path", cfgPath)
	}
	logger.Debug(cfg.Summary())

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", "path", cfg.Database.Path)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := metrics.NewRegistry()
	eventBus := service.NewEventBus()

	local, global := cfg.Profiles()
	graphSvc := service.NewGraphService(repo, eventBus, logger)
	layoutSvc := service.NewLayoutService(repo, eventBus, reg, logger, service.LayoutOptions{
		Timeout:       cfg.Layout.Timeout.Duration(),
		Workers:       cfg.Layout.Workers,
		MaxConcurrent: int64(cfg.Layout.MaxConcurrent),
		Seed:          cfg.Layout.Seed,
		MinWeight:     cfg.Layout.MinWeight,
		Local:         local,
		Global:        global,
	})

	sseHub := hub.New(logger, reg)
	go sseHub.Run(ctx)
	go sseHub.Forward(ctx, eventBus)

	if cfgPath != "" {
		w := watcher.New(cfgPath, watcher.ProfileReloader(cfgPath, layoutSvc, logger), logger)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped", "err", err)
			}
		}()
	}

	router := handler.NewRouter(handler.New(graphSvc, layoutSvc, logger), handler.RouterConfig{
		Events:      sseHub,
		Metrics:     reg,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	// The parent context is already done; shutdown gets its own deadline
	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout.Duration())
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
