package model

import "time"

// Screen represents a provisioned display device. The device key is the
// long-lived bearer secret the device presents on every poll; the pairing
// code that created the screen is single-use and lives in DevicePairing.
type Screen struct {
	ID                int        `db:"id"                  json:"id"`
	TenantID          int        `db:"tenant_id"           json:"tenant_id"`
	DeviceKey         string     `db:"device_key"          json:"-"`
	Name              string     `db:"name"                json:"name"`
	Location          *string    `db:"location"            json:"location,omitempty"`
	CurrentPlaylistID *int       `db:"current_playlist_id" json:"current_playlist_id,omitempty"`
	LastSeenAt        *time.Time `db:"last_seen_at"        json:"last_seen_at,omitempty"`
	Active            bool       `db:"active"              json:"active"`
	CreatedAt         time.Time  `db:"created_at"          json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"          json:"updated_at"`
}
