package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/worldads/adwatch/internal/config"
	"github.com/worldads/adwatch/internal/mockd"
	"github.com/worldads/adwatch/pkg/logger"
	pkgredis "github.com/worldads/adwatch/pkg/redis"
)

func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	logger.Init(env)
	log := logger.WithComponent("mockserver")

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Redis is optional: without it fan-out stays single-instance.
	redisClient, err := pkgredis.NewClient(cfg.Server.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running single-instance")
		redisClient = nil
	} else {
		log.Info().Str("addr", cfg.Server.RedisAddr).Msg("connected to redis")
	}

	store := mockd.NewStore()
	store.SeedAds(mockd.SampleAds())

	hub := mockd.NewHub(redisClient)
	go hub.Run()

	server := mockd.NewServer(cfg.Server, store, hub)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("mock backend listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	hub.Stop()
	if redisClient != nil {
		redisClient.Close() //nolint:errcheck
	}
}
