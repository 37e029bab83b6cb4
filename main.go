package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiaoyuanzhu-com/todos/config"
	"github.com/xiaoyuanzhu-com/todos/log"
	"github.com/xiaoyuanzhu-com/todos/server"
)

func main() {
	cfg := config.Get()
	if cfg.ConfigFile != "" {
		log.Info().Str("file", cfg.ConfigFile).Msg("configuration loaded")
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	log.Info().Str("addr", "http://"+cfg.Addr()).Msg("todos is listening")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}
}
