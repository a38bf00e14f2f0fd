package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shiftline/smena-bot/config"
	"github.com/shiftline/smena-bot/internal/bot"
	"github.com/shiftline/smena-bot/internal/metrics"
	"github.com/shiftline/smena-bot/internal/repository"
	"github.com/shiftline/smena-bot/internal/scheduler"
	"github.com/shiftline/smena-bot/internal/server"
	"github.com/shiftline/smena-bot/internal/tracker"
	"github.com/shiftline/smena-bot/internal/webapp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection.
	dtb, err := repository.NewDatabase(repository.ConnSettings{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MinConns: cfg.Database.MinConns,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// Create a new repository instance using the database connection.
	repo := repository.NewRepository(dtb)

	// Resolve the company default timezone once at startup.
	defaultLoc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone %q: %v", cfg.Timezone, err)
	}

	// Initialize the shift state machine service.
	shifts := tracker.NewService(logger, repo, defaultLoc)

	// Initialize the bot with the tracker and repository wiring.
	shiftBot, err := bot.NewBot(
		logger, shifts, repo, repo, appMetrics,
		cfg.Telegram.Token, cfg.Telegram.PollerTimeout,
		cfg.Scheduler.PendingTTL, defaultLoc,
	)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	defer stop() // Ensure stop is called to release resources related to signal handling.
	defer dtb.Close()

	// Assemble the scheduler tick from its three phases. The bot doubles
	// as the dispatcher's messenger.
	generator := scheduler.NewGenerator(logger, repo, appMetrics, cfg.Scheduler.GenerateLookahead, defaultLoc)
	dispatcher := scheduler.NewDispatcher(
		logger, repo, shiftBot, appMetrics,
		cfg.Scheduler.DispatchLookahead, cfg.Scheduler.BatchSize, cfg.Scheduler.BatchDelay,
	)
	detector := scheduler.NewDetector(logger, repo, appMetrics, cfg.Scheduler.ReportGrace)
	tick := scheduler.NewTick(logger, generator, dispatcher, detector, appMetrics)

	// The mini app submit endpoint shares the tracker with the bot.
	webappHandler := webapp.NewHandler(logger, shifts, cfg.Telegram.Token)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the long poller only when webhook delivery is off.
	if !cfg.Telegram.UseWebhook {
		go shiftBot.Start()
	}

	// Start the HTTP server with health, metrics, tick, webhook and
	// mini app endpoints.
	go server.StartServer(ctx, logger, reg, dtb, cfg.Port, tick, shiftBot, webappHandler)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Stop the bot gracefully.
	if !cfg.Telegram.UseWebhook {
		shiftBot.Stop()
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
