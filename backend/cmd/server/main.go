package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BioHazard786/diceroom/backend/internal/config"
	"github.com/BioHazard786/diceroom/backend/internal/game"
	"github.com/BioHazard786/diceroom/backend/internal/logging"
	"github.com/BioHazard786/diceroom/backend/internal/room"
	"github.com/BioHazard786/diceroom/backend/internal/server"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logging.Init("error", "text").Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Create the Hub around one dice for the whole process
	hub := room.NewHub(game.NewDice(), logger)

	// 2. Run the Hub in a separate goroutine
	// This starts the hub's main event loop (the 'select' statement)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	// 3. Register our handlers
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewRouter(hub, cfg.ClientOptions(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. Start the server
	go func() {
		logger.Info("Starting dice server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	// Hijacked websocket connections are not tracked by Shutdown; the hub
	// closes them.
	stopHub()
	select {
	case <-hub.Done():
	case <-shutdownCtx.Done():
	}

	logger.Info("Server stopped")
}
