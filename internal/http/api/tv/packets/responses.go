package packets

import "github.com/overture-digital/marquee/internal/signage/delivery"

// RESPONSES FOR /api/tv

type PairingCodeResponse struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expires_in"`
}

type PairingStatusResponse struct {
	Paired    bool   `json:"paired"`
	Expired   bool   `json:"expired"`
	ViewerURL string `json:"viewer_url,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

// UpdateResponse carries the check-updates answer. Items is omitted when the
// client's version already matches.
type UpdateResponse struct {
	Success     bool            `json:"success"`
	NeedsUpdate bool            `json:"needs_update"`
	Version     string          `json:"version"`
	PlaylistID  int             `json:"playlist_id"`
	Transition  string          `json:"transition,omitempty"`
	ItemCount   int             `json:"item_count,omitempty"`
	Items       []delivery.Item `json:"items,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
