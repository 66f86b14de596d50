package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fooddelivery/delivery-platform/internal/api"
	"github.com/fooddelivery/delivery-platform/internal/infrastructure/config"
	mongodb "github.com/fooddelivery/delivery-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/fooddelivery/delivery-platform/internal/infrastructure/db/redis"
	"github.com/fooddelivery/delivery-platform/internal/infrastructure/queue"
	"github.com/fooddelivery/delivery-platform/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "user-service",
		Pretty:  cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to mongodb")
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Error().Err(err).Msg("failed to create user indexes")
		os.Exit(1)
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to redis")
		os.Exit(1)
	}
	defer func() { _ = rdb.Close() }()

	conn, channel, err := queue.Connect(cfg.AMQP.URL)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to rabbitmq")
		os.Exit(1)
	}
	defer func() {
		_ = channel.Close()
		_ = conn.Close()
	}()

	publisher := queue.NewPublisher(cfg.AMQP.Workers, channel, log)
	publisher.Start(ctx)

	e := api.NewRouter(db, rdb, publisher, cfg, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("user service listening")
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
	log.Info().Msg("user service stopped")
}
