package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/telebot.v4"
)

// TickRunner runs one scheduler pass and reports when it ran.
type TickRunner interface {
	Run(ctx context.Context) time.Time
}

// UpdateProcessor feeds a Telegram webhook update into the bot router.
type UpdateProcessor interface {
	ProcessUpdate(update telebot.Update)
}

// StartServer starts the HTTP server that provides health check,
// metrics, scheduler tick, Telegram webhook and mini app endpoints.
// It listens on the specified port and blocks until ctx is cancelled.
func StartServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb DBPinger,
	port int,
	tick TickRunner,
	bot UpdateProcessor,
	webappHandler http.Handler,
) {
	mux := http.NewServeMux()
	healthChecker := NewHealthChecker(log, dtb)

	mux.Handle("/healthz", healthChecker)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/scheduler/tick", tickHandler(log, tick))
	mux.HandleFunc("/tg/webhook", webhookHandler(log, bot))
	mux.Handle("/webapp/submit", webappHandler)

	log.InfoContext(ctx, "Starting server", "port", port)

	readTimeout := 5
	writeTimeout := 60
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	var err error
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(readTimeout)*time.Second)
		defer cancel()
		log.InfoContext(ctx, "Server shutting down.")
		if err = server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "Server failed to shutdown", "error", err)
			return
		}
	case err = <-serverErr:
		log.ErrorContext(ctx, "Server failed", "error", err)
	}
}

// tickHandler triggers one scheduler pass. It is meant to be hit by an
// external cron every minute.
func tickHandler(log *slog.Logger, tick TickRunner) http.HandlerFunc {
	return func(writer http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(writer, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ranAt := tick.Run(req.Context())

		writer.Header().Set("Content-Type", "application/json")
		response := map[string]any{
			"ok":     true,
			"result": map[string]string{"ranAt": ranAt.UTC().Format(time.RFC3339)},
		}
		if err := json.NewEncoder(writer).Encode(response); err != nil {
			log.ErrorContext(req.Context(), "Failed to write tick response", "error", err)
		}
	}
}

// webhookHandler accepts Telegram webhook updates. It always answers
// 200 so Telegram does not retry updates the bot already saw.
func webhookHandler(log *slog.Logger, bot UpdateProcessor) http.HandlerFunc {
	return func(writer http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(writer, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var update telebot.Update
		if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
			log.WarnContext(req.Context(), "Failed to decode webhook update", "error", err)
		} else {
			bot.ProcessUpdate(update)
		}

		writer.Header().Set("Content-Type", "application/json")
		if _, err := writer.Write([]byte(`{"ok":true}`)); err != nil {
			log.ErrorContext(req.Context(), "Failed to write webhook response", "error", err)
		}
	}
}
