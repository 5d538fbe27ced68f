package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"deskbook-agent/config"
	"deskbook-agent/internal/airdesk"
	"deskbook-agent/internal/api"
	"deskbook-agent/internal/metrics"
	"deskbook-agent/internal/notification"
	"deskbook-agent/internal/scheduler"
	"deskbook-agent/internal/status"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "deskbook ", log.LstdFlags)

	// Load configuration. Without DESKBOOK_CONFIG the defaults apply.
	configPath := os.Getenv("DESKBOOK_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	if configPath != "" {
		logger.Printf("configuration loaded successfully from %s", configPath)
	}

	// Stop on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	tracker := status.NewTracker(2 * cfg.Schedule.Interval)

	var notifier *notification.WorkerPool
	if cfg.Push.Enabled() {
		notifier = notification.NewWorkerPool(cfg.WorkerPool.Size, &cfg.Push)
		logger.Printf("push notifications enabled for %d subscriptions (notify on %s)", len(cfg.Push.Subscriptions), cfg.Push.NotifyOn)
	}

	client := airdesk.NewClient(&cfg.Airdesk, config.EnvCredentials{})
	svc := scheduler.NewService(cfg, client,
		scheduler.WithTracker(tracker),
		scheduler.WithMetrics(m),
		scheduler.WithNotifier(notifier),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svc.Run(gctx)
	})

	if cfg.Server.Enabled {
		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: api.NewRouter(&cfg.Server, api.NewHandler(tracker, notifier), prometheus.DefaultGatherer),
		}

		g.Go(func() error {
			logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server ListenAndServe: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("HTTP server Shutdown: %w", err)
			}
			logger.Println("HTTP server stopped")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, airdesk.ErrConfig) {
			logger.Printf("set %s, %s and %s", config.EnvUser, config.EnvPassword, config.EnvWorkplace)
		}
		logger.Fatalf("deskbook stopped: %v", err)
	}
	logger.Println("deskbook gracefully stopped")
}
