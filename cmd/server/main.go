package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bcnelson/maintenance-window-manager/internal/api"
	"github.com/bcnelson/maintenance-window-manager/internal/autotag"
	"github.com/bcnelson/maintenance-window-manager/internal/config"
	"github.com/bcnelson/maintenance-window-manager/internal/entityindex"
	"github.com/bcnelson/maintenance-window-manager/internal/fetcher"
	"github.com/bcnelson/maintenance-window-manager/internal/logging"
	"github.com/bcnelson/maintenance-window-manager/internal/resolver"
	"github.com/bcnelson/maintenance-window-manager/internal/service"
	"github.com/bcnelson/maintenance-window-manager/internal/storage/sql"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "mwm",
	Short:   "Maintenance Window Manager",
	Long:    `Builds maintenance windows from entity filters and keeps their auto-tags tidy.`,
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(compileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads and validates configuration and initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Init(logging.Config{
		Format:    cfg.Log.Format,
		Level:     cfg.Log.Level,
		Component: "mwm",
	})
	return cfg, nil
}

// newIndex returns the REST client, or the file shim when one is configured.
func newIndex(cfg *config.Config) entityindex.Index {
	if cfg.UseFileShim() {
		log.Info().Str("path", cfg.Index.FileShim).Msg("using file shim for the entity index")
		return entityindex.NewFileShim(cfg.Index.FileShim)
	}
	return entityindex.New(entityindex.Options{
		BaseURL:    cfg.Index.URL,
		APIToken:   cfg.Index.APIToken,
		Timeout:    cfg.Index.Timeout,
		RetryCount: cfg.Index.RetryCount,
	})
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Create data directory if needed (for SQLite)
	if cfg.Database.Driver == "sqlite3" {
		if dir := filepath.Dir(cfg.Database.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating data directory: %w", err)
			}
		}
	}

	store, err := sql.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close()

	index := newIndex(cfg)
	tags := autotag.New(index)
	windows := service.NewWindowService(
		index,
		store,
		fetcher.New(index, fetcher.Options{
			PageSize:    cfg.Fetch.PageSize,
			From:        cfg.Fetch.From,
			Concurrency: cfg.Fetch.Concurrency,
		}),
		resolver.New(index),
		tags,
	)
	cleanup := service.NewCleanupScheduler(tags, cfg.Cleanup.Schedule)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cleanup.Enabled {
		if err := cleanup.Start(ctx); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(store, windows, cleanup, cfg.Auth.BootstrapAPIKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr()).Str("version", Version).Msg("starting maintenance window manager")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if cfg.Cleanup.Enabled {
		cleanup.Stop()
	}

	log.Info().Msg("server stopped")
	return nil
}
