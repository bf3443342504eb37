/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the vacation engine server. Handles
  configuration, dependency injection, and graceful shutdown.

COMMANDS:
  vacationd serve    Start the HTTP server
  vacationd seed     Load the demo dataset and exit

CONFIGURATION:
  Read from the environment (a .env file is loaded if present):
    VACATION_PORT       HTTP server port (default: 8080)
    VACATION_DB         SQLite database path (default: vacation.db)
                        Use ":memory:" for an in-memory database
    VACATION_LOG_LEVEL  logrus level (default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  VACATION_DB=./data/vacation.db vacationd serve

  # Explore the API with demo data
  vacationd seed && vacationd serve

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ondahr/vacation-engine/api"
	"github.com/ondahr/vacation-engine/store/sqlite"
)

type config struct {
	Port   int
	DBPath string
	Log    *logrus.Logger
}

func loadConfig() config {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(envOr("VACATION_LOG_LEVEL", "info")); err == nil {
		log.SetLevel(lvl)
	}

	port := 8080
	if p, err := strconv.Atoi(envOr("VACATION_PORT", "8080")); err == nil {
		port = p
	}

	return config{
		Port:   port,
		DBPath: envOr("VACATION_DB", "vacation.db"),
		Log:    log,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	root := &cobra.Command{
		Use:   "vacationd",
		Short: "Vacation balance lifecycle engine",
		Long: "vacationd tracks acquisition periods, vacation balances and " +
			"bookings for CLT-style vacation rules.",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()

			store, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer store.Close()

			handler := api.NewHandler(store, cfg.Log)
			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", cfg.Port),
				Handler:      api.NewRouter(handler),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				cfg.Log.WithFields(logrus.Fields{
					"port": cfg.Port,
					"db":   cfg.DBPath,
				}).Info("server starting")
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-quit:
			}

			cfg.Log.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("forced shutdown: %w", err)
			}
			cfg.Log.Info("server stopped")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()

			store, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer store.Close()

			handler := api.NewHandler(store, cfg.Log)
			return handler.Seed(cmd.Context())
		},
	}
}
