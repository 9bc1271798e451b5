package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rapido-express/blogcms/internal/archive"
	"github.com/rapido-express/blogcms/internal/config"
	"github.com/rapido-express/blogcms/internal/core"
	"github.com/rapido-express/blogcms/internal/database"
	"github.com/rapido-express/blogcms/internal/logging"
	"github.com/rapido-express/blogcms/internal/repository"
	"github.com/rapido-express/blogcms/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"mode", cfg.App.Mode,
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// The ingestion core enforces the same limit the HTTP layer does
	core.MaxFileSize = cfg.Upload.MaxFileSize

	// Apply schema migrations before accepting traffic
	if err := database.Migrate(&cfg.Database); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	// Optional on-disk copy of accepted uploads
	var archiver core.Archiver
	if cfg.Archive.Enabled {
		store, err := archive.NewStore(cfg.Archive.Dir)
		if err != nil {
			slog.Error("failed to set up archive directory", "error", err)
			os.Exit(1)
		}
		archiver = store
		slog.Info("upload archiving enabled", "dir", cfg.Archive.Dir)
	}

	repo := repository.NewUploadRepository(pool)
	service := core.NewService(repo, archiver, cfg.App.Mode)
	server := web.NewServer(service, cfg, pool)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
