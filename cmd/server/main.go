package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/Design-Arena-Gens/splittab/internal/config"
	"github.com/Design-Arena-Gens/splittab/internal/ledger"
	"github.com/Design-Arena-Gens/splittab/internal/server"
	"github.com/Design-Arena-Gens/splittab/internal/storage"
	"github.com/Design-Arena-Gens/splittab/internal/storage/memory"
	"github.com/Design-Arena-Gens/splittab/internal/storage/sqlite"
	"github.com/Design-Arena-Gens/splittab/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	var store storage.Store
	switch cfg.Storage {
	case config.StorageSQLite:
		store, err = sqlite.New(cfg.DBPath)
		if err != nil {
			slog.Error("failed to initialize storage", "error", err)
			os.Exit(1)
		}
		slog.Info("storage initialized", "backend", cfg.Storage, "database", cfg.DBPath)
	default:
		store = memory.New()
		slog.Info("storage initialized", "backend", cfg.Storage)
	}
	defer store.Close()

	handler := server.New(ledger.New(store)).Handler()

	// Wrap with h2c for HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	slog.Info("server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h2cHandler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
