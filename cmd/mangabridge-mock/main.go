// Command mangabridge-mock serves the in-memory admin backend for local runs of the
// CLI and the examples. Seeded accounts: admin@manga.local / admin123,
// reader@manga.local / reader123, studio@manga.local / studio123.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/opengovern/manga-bridge/internal/logging"
	"github.com/opengovern/manga-bridge/mock"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("MANGABRIDGE_MOCK_ADDR", ":3000"), "listen address")
	accessTTL := flag.Duration("access-ttl", mock.DefaultAccessTTL, "lifetime of issued access tokens")
	level := flag.String("log-level", envOr("MANGABRIDGE_LOGGING_LEVEL", "info"), "debug, info, warn or error")
	flag.Parse()

	logging.Setup(*level, os.Getenv("MANGABRIDGE_LOGGING_FORMAT") == "json")

	server := mock.NewServer()
	server.SetAccessTTL(*accessTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		slog.Info("mock backend listening", "addr", *addr, "access_ttl", *accessTTL)
		if err := server.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mock backend stopped", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Echo().Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
