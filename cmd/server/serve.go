package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/climate-dashboard-api/internal/api"
	"github.com/climate-dashboard-api/internal/database"
	"github.com/climate-dashboard-api/internal/event"
	"github.com/climate-dashboard-api/internal/observability/metrics"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/climate-dashboard-api/internal/sysmon"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCommand(a *app) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")

	return cmd
}

func (a *app) serve(skipMigrations bool) error {
	cfg, log := a.cfg, a.log
	log.Info().Msg("Starting climate dashboard API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if !skipMigrations {
		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	// Initialize session store
	rdb, err := database.NewRedis(&cfg.Redis, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	deps := service.Deps{
		Metrics: m,
		Sampler: sysmon.NewSampler(cfg.Metrics.DiskPath),
	}

	// Optional audit fan-out
	if cfg.Audit.AMQPURL != "" {
		conn, err := event.Connect(cfg.Audit.AMQPURL, log)
		if err != nil {
			return fmt.Errorf("failed to connect to audit broker: %w", err)
		}
		defer conn.Close()
		deps.Notifier = event.NewAuditPublisher(conn, cfg.Audit.Queue, log)
	}

	// Initialize repositories and services
	repos := repository.New(db, rdb, cfg.Auth.SessionTTL)
	services := service.NewServices(repos, cfg, log, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.CollectorEnabled {
		services.Metrics.StartCollector(ctx)
	}

	// Initialize router
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(services, cfg, m, db, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serveErr:
		services.Metrics.StopCollector()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop metrics collector
	services.Metrics.StopCollector()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}
