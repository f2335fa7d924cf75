// Package heartbeat records device liveness and derives online status.
package heartbeat

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/model"
)

// OnlineWindow is how recently a screen must have been seen to count as
// online. Online is always derived from the last heartbeat, never stored.
const OnlineWindow = 2 * time.Minute

type Store interface {
	TouchScreenLastSeen(screenID int, at time.Time) error
}

type Tracker struct {
	store Store
	rdb   *redis.Client
}

// NewTracker builds a tracker. rdb may be nil; presence then falls back to
// the persisted last-seen timestamp alone.
func NewTracker(store Store, rdb *redis.Client) *Tracker {
	return &Tracker{store: store, rdb: rdb}
}

func presenceKey(screenID int) string {
	return fmt.Sprintf("screen:%d:online", screenID)
}

// Touch records that the device was alive at the given instant. Both writes
// are best-effort: liveness bookkeeping must never fail a content poll.
func (t *Tracker) Touch(ctx context.Context, screenID int, at time.Time) {
	if err := t.store.TouchScreenLastSeen(screenID, at); err != nil {
		log.Warn().Err(err).Int("screen_id", screenID).Msg("failed to persist heartbeat")
	}
	if t.rdb != nil {
		if err := t.rdb.Set(ctx, presenceKey(screenID), at.UTC().Format(time.RFC3339), OnlineWindow).Err(); err != nil {
			log.Warn().Err(err).Int("screen_id", screenID).Msg("failed to set presence key")
		}
	}
}

// Online reports whether the screen has been seen within the freshness
// window. The Redis presence key answers fastest; on a miss or error the
// persisted timestamp decides.
func (t *Tracker) Online(ctx context.Context, screen model.Screen, now time.Time) bool {
	if t.rdb != nil {
		n, err := t.rdb.Exists(ctx, presenceKey(screen.ID)).Result()
		if err == nil && n > 0 {
			return true
		}
	}
	return screen.LastSeenAt != nil && now.Sub(*screen.LastSeenAt) <= OnlineWindow
}
