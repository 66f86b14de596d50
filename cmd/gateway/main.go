package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fooddelivery/delivery-platform/internal/core/service"
	"github.com/fooddelivery/delivery-platform/internal/gateway"
	"github.com/fooddelivery/delivery-platform/internal/infrastructure/config"
	"github.com/fooddelivery/delivery-platform/pkg/logger"
)

func main() {
	cfg := config.LoadGateway()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "gateway",
		Pretty:  cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	codec := service.NewSessionCodec(cfg.JWTSecret, 0)

	g, err := gateway.New(cfg, codec, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build gateway")
		os.Exit(1)
	}

	e := gateway.NewRouter(g, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("gateway stopped")
}
