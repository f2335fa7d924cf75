package model

import "time"

// Transition effects supported by the player.
const (
	TransitionFade  = "fade"
	TransitionSlide = "slide"
	TransitionZoom  = "zoom"
	TransitionNone  = "none"
)

// ValidTransition reports whether t is one of the supported effects.
func ValidTransition(t string) bool {
	switch t {
	case TransitionFade, TransitionSlide, TransitionZoom, TransitionNone:
		return true
	}
	return false
}

type Playlist struct {
	ID         int            `db:"id"          json:"id"`
	TenantID   int            `db:"tenant_id"   json:"tenant_id"`
	Name       string         `db:"name"        json:"name"`
	Transition string         `db:"transition"  json:"transition"`
	IsDefault  bool           `db:"is_default"  json:"is_default"`
	Shared     bool           `db:"shared"      json:"shared"`
	ShareToken *string        `db:"share_token" json:"share_token,omitempty"`
	CreatedAt  time.Time      `db:"created_at"  json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"  json:"updated_at"`
	Items      []PlaylistItem `db:"-"           json:"items,omitempty"`
}

type PlaylistItem struct {
	ID         int       `db:"id"          json:"id"`
	PlaylistID int       `db:"playlist_id" json:"playlist_id"`
	ContentID  int       `db:"content_id"  json:"content_id"`
	Position   int       `db:"position"    json:"position"`
	Duration   *int      `db:"duration"    json:"duration,omitempty"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

// ResolvedItem is a playlist item joined with its content row, ordered and
// ready for delivery to a player. Duration is the per-item override if set,
// otherwise the content's intrinsic duration, and may still be nil.
type ResolvedItem struct {
	ContentID int    `db:"content_id" json:"content_id"`
	URL       string `db:"url"        json:"url"`
	Type      string `db:"type"       json:"type"`
	Duration  *int   `db:"duration"   json:"duration,omitempty"`
	Position  int    `db:"position"   json:"position"`
}
