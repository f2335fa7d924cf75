package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/config"
	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/logger"
	"github.com/overture-digital/marquee/internal/redis"
	"github.com/overture-digital/marquee/internal/signage/delivery"
	"github.com/overture-digital/marquee/internal/signage/heartbeat"
	"github.com/overture-digital/marquee/internal/signage/pairing"
	"github.com/overture-digital/marquee/internal/signage/schedule"
)

// versionCacheTTL bounds how long a stale fingerprint can satisfy the
// unchanged-poll fast path when a mutation slipped past invalidation.
const versionCacheTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)

	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	store := db.NewStore(db.DB)

	redis.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)

	cache := redis.NewVersionCache(redis.Rdb, versionCacheTTL)
	tracker := heartbeat.NewTracker(store, redis.Rdb)
	resolver := schedule.NewResolver(store)
	gate := delivery.NewGate(store, resolver, cache, tracker)
	machine := pairing.NewMachine(store)
	storageSystem := InitStorage(cfg)

	r := gin.Default()
	RegisterRoutes(r, cfg, store, Services{
		Gate:    gate,
		Tracker: tracker,
		Machine: machine,
		Cache:   cache,
		Storage: storageSystem,
	})

	log.Info().Str("address", cfg.ServerAddress).Msg("server listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
