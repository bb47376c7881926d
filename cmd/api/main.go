package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/auth"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/config"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/server"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Give in-flight requests five seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
	done <- true
}

func main() {
	cfg := config.Load()

	dbService := database.NewService()
	defer dbService.Close()

	if err := auth.InitAuth(database.Dbpool, cfg.JWTSecret); err != nil {
		log.Fatal().Err(err).Msg("Could not initialize authentication")
	}

	apiServer := server.NewServer(dbService, cfg)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, done)

	log.Info().Int("port", cfg.Port).Msg("Starting API server")
	err := apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
