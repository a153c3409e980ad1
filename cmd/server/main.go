package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tagmaker/internal/config"
	"tagmaker/internal/db"
	"tagmaker/internal/iptc"
	"tagmaker/internal/jobs"
	"tagmaker/internal/metrics"
	"tagmaker/internal/server"
	"tagmaker/internal/tagging"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	rules, err := config.LoadRulesConfig(cfg.RulesFile)
	if err != nil {
		slog.Error("failed to load rules file", "path", cfg.RulesFile, "error", err)
		os.Exit(1)
	}
	cfg.Settings = rules.Apply(cfg.Settings)

	setupLogging(cfg)
	if rules != nil {
		slog.Info("loaded rules file", "path", cfg.RulesFile)
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations completed successfully")

	seeded, err := database.SeedDefaultRules(ctx, rules.Blocked(), rules.Substitutions())
	if err != nil {
		slog.Error("failed to seed default rules", "error", err)
		os.Exit(1)
	}
	if seeded {
		slog.Info("seeded default keyword rules")
	}

	metrics.Init(database)

	processor := tagging.NewProcessor(database, database, iptc.Reader{}, cfg.Settings, rules.Excluded())

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(ctx, database, processor); err != nil {
		slog.Error("failed to register routes", "error", err)
		os.Exit(1)
	}

	if cfg.EnableBackfill {
		backfill := jobs.NewBackfill(database, processor, cfg.BackfillInterval)
		go backfill.Start(ctx)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	cancel()
	if err := srv.Shutdown(); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited")
}

// setupLogging installs the default slog logger: JSON in production, text in
// development, debug level when DEBUG_LOGGING is on.
func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.Settings.DebugLogging {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
