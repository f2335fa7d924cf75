package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

func InitRedis(address, username, password string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
}

// VersionCache keeps computed playlist fingerprints so the common "nothing
// changed" poll can short-circuit without touching Postgres. All operations
// are best-effort: a missing or unreachable Redis degrades to fresh
// computation, never to an error.
type VersionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewVersionCache(rdb *redis.Client, ttl time.Duration) *VersionCache {
	return &VersionCache{rdb: rdb, ttl: ttl}
}

func versionKey(playlistID int) string {
	return fmt.Sprintf("playlist:%d:version", playlistID)
}

func (c *VersionCache) Get(ctx context.Context, playlistID int) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	v, err := c.rdb.Get(ctx, versionKey(playlistID)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *VersionCache) Set(ctx context.Context, playlistID int, version string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, versionKey(playlistID), version, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Int("playlist_id", playlistID).Msg("failed to cache playlist version")
	}
}

// Invalidate drops the cached fingerprint after a playlist mutation so the
// next poll recomputes it.
func (c *VersionCache) Invalidate(ctx context.Context, playlistID int) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, versionKey(playlistID)).Err(); err != nil {
		log.Warn().Err(err).Int("playlist_id", playlistID).Msg("failed to invalidate playlist version")
	}
}
