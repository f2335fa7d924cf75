// Package version derives content fingerprints for change detection.
//
// A fingerprint is a pure function of a playlist's identity, last
// modification time, transition effect and ordered resolved items. Clients
// echo the fingerprint back on every poll; any byte difference means the
// playlist content must be re-sent. The hash is for change detection, not
// integrity, but SHA-256 keeps accidental collisions out of the picture.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/overture-digital/marquee/internal/model"
)

// DefaultItemDuration is the display time in seconds applied when neither
// the playlist item nor its content carries a duration.
const DefaultItemDuration = 10

type canonicalPlaylist struct {
	PlaylistID int             `json:"playlist_id"`
	UpdatedAt  int64           `json:"updated_at"`
	Transition string          `json:"transition"`
	Items      []canonicalItem `json:"items"`
}

type canonicalItem struct {
	ContentID int    `json:"content_id"`
	URL       string `json:"url"`
	Duration  int    `json:"duration"`
	Position  int    `json:"position"`
}

// Compute returns the fingerprint for a playlist and its resolved items.
// Identical inputs always produce identical output; any change to the item
// set, order, durations, paths, transition or modification time changes it.
func Compute(pl model.Playlist, items []model.ResolvedItem) string {
	canon := canonicalPlaylist{
		PlaylistID: pl.ID,
		UpdatedAt:  pl.UpdatedAt.UTC().Unix(),
		Transition: pl.Transition,
		Items:      make([]canonicalItem, 0, len(items)),
	}
	for _, it := range items {
		canon.Items = append(canon.Items, canonicalItem{
			ContentID: it.ContentID,
			URL:       it.URL,
			Duration:  EffectiveDuration(it),
			Position:  it.Position,
		})
	}

	// struct field order is fixed, so the JSON encoding is deterministic
	raw, err := json.Marshal(canon)
	if err != nil {
		// canonicalPlaylist contains nothing json.Marshal can reject
		panic("version: marshal canonical playlist: " + err.Error())
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// EffectiveDuration resolves the display time for an item: the per-item
// override (already coalesced with the content's intrinsic duration by the
// store) or the fallback constant.
func EffectiveDuration(it model.ResolvedItem) int {
	if it.Duration != nil && *it.Duration > 0 {
		return *it.Duration
	}
	return DefaultItemDuration
}
