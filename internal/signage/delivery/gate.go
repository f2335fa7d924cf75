// Package delivery answers the player's "do I need new content" poll.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/model"
	"github.com/overture-digital/marquee/internal/signage/schedule"
	"github.com/overture-digital/marquee/internal/signage/version"
)

type Store interface {
	GetScreenByDeviceKey(deviceKey string) (model.Screen, error)
	GetPlaylistByID(id int) (model.Playlist, error)
	GetResolvedItems(playlistID int) ([]model.ResolvedItem, error)
}

// Resolver picks the active playlist for a screen; see the schedule package.
type Resolver interface {
	Resolve(screen model.Screen, now time.Time) (int, schedule.Source, error)
}

// VersionCache is a best-effort fingerprint cache. A nil implementation is
// fine; every miss just recomputes.
type VersionCache interface {
	Get(ctx context.Context, playlistID int) (string, bool)
	Set(ctx context.Context, playlistID int, v string)
}

// Liveness receives the heartbeat side effect of a content poll.
type Liveness interface {
	Touch(ctx context.Context, screenID int, at time.Time)
}

// Item is one playlist entry shaped for the player.
type Item struct {
	ContentID int    `json:"content_id"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	Duration  int    `json:"display_duration"`
	Position  int    `json:"position"`
}

// Update is the check-for-updates result. Items is populated only when
// NeedsUpdate is true: an unchanged poll carries no payload.
type Update struct {
	NeedsUpdate bool
	Version     string
	PlaylistID  int
	Source      schedule.Source
	Transition  string
	Items       []Item
}

type Gate struct {
	store    Store
	resolver Resolver
	cache    VersionCache
	liveness Liveness
}

func NewGate(store Store, resolver Resolver, cache VersionCache, liveness Liveness) *Gate {
	return &Gate{store: store, resolver: resolver, cache: cache, liveness: liveness}
}

// CheckForUpdate resolves the screen's active playlist, fingerprints it and
// compares against the version the client last saw. Comparison is exact
// string equality: an empty or garbled client version simply never matches
// and yields a full payload.
//
// Every poll also refreshes the screen's liveness marker. That coupling is
// intentional: a content poll is evidence the device is alive, and players
// poll far more often than they heartbeat.
func (g *Gate) CheckForUpdate(ctx context.Context, deviceKey, clientVersion string, now time.Time) (Update, error) {
	screen, err := g.store.GetScreenByDeviceKey(deviceKey)
	if err != nil {
		if db.IsNotFound(err) {
			return Update{}, ErrScreenNotFound
		}
		return Update{}, fmt.Errorf("load screen: %w", err)
	}

	if g.liveness != nil {
		g.liveness.Touch(ctx, screen.ID, now)
	}

	playlistID, source, err := g.resolver.Resolve(screen, now)
	if err != nil {
		// never collapse a resolution failure into "no update": that would
		// hide staleness from the device indefinitely
		return Update{}, fmt.Errorf("resolve playlist: %w", err)
	}
	if playlistID == 0 {
		return Update{}, ErrNoContentAssigned
	}

	// fast path: the cached fingerprint matching the client's means nothing
	// changed and no further loading is needed
	if clientVersion != "" && g.cache != nil {
		if cached, ok := g.cache.Get(ctx, playlistID); ok && cached == clientVersion {
			return Update{NeedsUpdate: false, Version: cached, PlaylistID: playlistID, Source: source}, nil
		}
	}

	playlist, err := g.store.GetPlaylistByID(playlistID)
	if err != nil {
		return Update{}, fmt.Errorf("load playlist %d: %w", playlistID, err)
	}
	resolved, err := g.store.GetResolvedItems(playlistID)
	if err != nil {
		return Update{}, fmt.Errorf("load playlist items %d: %w", playlistID, err)
	}

	fingerprint := version.Compute(playlist, resolved)
	if g.cache != nil {
		g.cache.Set(ctx, playlistID, fingerprint)
	}

	if fingerprint == clientVersion {
		return Update{NeedsUpdate: false, Version: fingerprint, PlaylistID: playlistID, Source: source}, nil
	}

	items := make([]Item, 0, len(resolved))
	for _, it := range resolved {
		items = append(items, Item{
			ContentID: it.ContentID,
			URL:       it.URL,
			Type:      it.Type,
			Duration:  version.EffectiveDuration(it),
			Position:  it.Position,
		})
	}

	log.Debug().
		Int("screen_id", screen.ID).
		Int("playlist_id", playlistID).
		Str("source", string(source)).
		Int("items", len(items)).
		Msg("delivering playlist update")

	return Update{
		NeedsUpdate: true,
		Version:     fingerprint,
		PlaylistID:  playlistID,
		Source:      source,
		Transition:  playlist.Transition,
		Items:       items,
	}, nil
}
