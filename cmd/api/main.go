// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "family-ledger/internal"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledger := app.NewApplication()
	if err := ledger.Initialize(ctx); err != nil {
		ledger.Logger.Error("Failed to initialize family ledger", "error", err)
		return 1
	}

	server := &http.Server{
		Addr:              ":" + ledger.Config.ServerPort,
		Handler:           ledger.HTTPHandler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second, // exceeds handler.DefaultTimeout
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		ledger.Logger.Info("Ledger API listening", "port", ledger.Config.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		ledger.Logger.Error("HTTP server stopped unexpectedly", "error", err)
		exitCode = 1
	case <-ctx.Done():
		ledger.Logger.Info("Shutdown signal received, draining requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		ledger.Logger.Error("HTTP server shutdown failed", "error", err)
		exitCode = 1
	}
	if err := ledger.Shutdown(shutdownCtx); err != nil {
		ledger.Logger.Error("Closing ledger resources failed", "error", err)
		exitCode = 1
	}

	if exitCode == 0 {
		ledger.Logger.Info("Family ledger stopped")
	}
	return exitCode
}
