package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pochivni/planner/api"
	"github.com/pochivni/planner/holidays"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.ValidateServer(); err != nil {
				return err
			}
			return serve(a)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides server.port)")
	return cmd
}

func serve(a *app) error {
	cfg, logger := a.cfg, a.logger

	records, closer, err := openRecords(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer closer.Close()

	source := newHolidaySource(cfg, logger)
	planner, err := holidays.NewPlanner(source, cfg.Bridges.Strategy, cfg.School.Exclude, logger)
	if err != nil {
		return err
	}

	handler := api.NewHandler(planner, records, logger)
	auth := api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.GetTokenTTL())
	router := api.NewRouter(handler, auth, api.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins})

	prefetcher := api.NewHolidayPrefetcher(source, logger)
	prefetcher.CheckInterval = cfg.Server.GetPrefetchInterval()
	prefetcher.Enabled = !cfg.Holidays.Offline
	prefetcher.Start()
	defer prefetcher.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
