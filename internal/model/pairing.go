package model

import "time"

// Pairing lifecycle states. "expired" is derived from ExpiresAt at read time;
// the stored status may lag behind the clock and is never trusted on its own.
const (
	PairingStatusPending = "pending"
	PairingStatusPaired  = "paired"
	PairingStatusExpired = "expired"
)

type DevicePairing struct {
	ID        int        `db:"id"         json:"id"`
	Code      string     `db:"code"       json:"code"`
	DeviceID  string     `db:"device_id"  json:"device_id"`
	Status    string     `db:"status"     json:"status"`
	ScreenID  *int       `db:"screen_id"  json:"screen_id,omitempty"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	PairedAt  *time.Time `db:"paired_at"  json:"paired_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// ExpiredAt reports whether the pairing should be treated as expired at now,
// regardless of the stored status.
func (p DevicePairing) ExpiredAt(now time.Time) bool {
	return p.Status != PairingStatusPaired && !p.ExpiresAt.After(now)
}
