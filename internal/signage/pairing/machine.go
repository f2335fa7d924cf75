// Package pairing drives the device-pairing lifecycle: a headless display
// shows a short code, a signed-in user claims it, and the display picks up
// its new identity on the next status poll.
//
// States: pending -> paired (terminal) and pending -> expired (terminal,
// derived from expires_at rather than trusted from the stored status).
// Re-issuing a code for a device with a live pending record is a no-op that
// returns the existing code.
package pairing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/model"
)

// CodeTTL is how long an issued code stays claimable.
const CodeTTL = time.Hour

// maxCodeAttempts bounds the collision retry loop when inserting a fresh
// code against the unique pending-code index.
const maxCodeAttempts = 5

type Store interface {
	GetPendingPairingForDevice(deviceID string, now time.Time) (model.DevicePairing, error)
	ExpireStalePairings(deviceID string, now time.Time) error
	CreatePairing(code, deviceID string, now, expiresAt time.Time) (model.DevicePairing, error)
	GetPairingByCode(code string) (model.DevicePairing, error)
	GetLatestPairingForDevice(deviceID string) (model.DevicePairing, error)
	ClaimPairing(code string, tenantID int, screenName, deviceKey string, playlistID int, now time.Time) (model.Screen, bool, error)
	GetPlaylistByID(id int) (model.Playlist, error)
	GetScreenByID(id int) (model.Screen, error)
}

type Machine struct {
	store Store
}

// NewDeviceKey mints the long-lived credential a provisioned screen
// authenticates with. Also used when a screen is created by hand instead of
// through a pairing claim.
func NewDeviceKey() string {
	return uuid.NewString()
}

func NewMachine(store Store) *Machine {
	return &Machine{store: store}
}

// IssueOrReuseCode returns the device's live pending code, or mints a new
// one when none exists. Idempotent per device id: a kiosk reloading its
// pairing screen keeps seeing the same code until it expires. Concurrent
// first contacts are collapsed by the partial unique index on
// (device_id) WHERE status = 'pending'; the loser of the race re-reads the
// winner's row.
func (m *Machine) IssueOrReuseCode(deviceID string, now time.Time) (model.DevicePairing, error) {
	if existing, err := m.store.GetPendingPairingForDevice(deviceID, now); err == nil {
		return existing, nil
	} else if !db.IsNotFound(err) {
		return model.DevicePairing{}, fmt.Errorf("look up pending pairing: %w", err)
	}

	// flip timed-out pending rows to expired so the partial unique indexes
	// don't block the fresh insert
	if err := m.store.ExpireStalePairings(deviceID, now); err != nil {
		return model.DevicePairing{}, fmt.Errorf("expire stale pairings: %w", err)
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return model.DevicePairing{}, err
		}
		p, err := m.store.CreatePairing(code, deviceID, now, now.Add(CodeTTL))
		if err == nil {
			log.Info().Str("device_id", deviceID).Msg("issued pairing code")
			return p, nil
		}
		if !db.IsDuplicate(err) {
			return model.DevicePairing{}, fmt.Errorf("create pairing: %w", err)
		}
		// either another request for this device won the insert race, or
		// the generated code collided with a live one
		if existing, lookupErr := m.store.GetPendingPairingForDevice(deviceID, now); lookupErr == nil {
			return existing, nil
		}
		log.Debug().Int("attempt", attempt).Msg("pairing code collision, retrying")
	}
	return model.DevicePairing{}, fmt.Errorf("could not generate a unique pairing code after %d attempts", maxCodeAttempts)
}

// ClaimCode completes a pairing exactly once: it provisions a screen owned
// by tenantID with a fresh long-lived device key, assigns the chosen
// playlist, and marks the record paired. Expiry is re-checked here against
// now; an earlier "not yet expired" read is never trusted.
func (m *Machine) ClaimCode(code string, tenantID, playlistID int, screenName string, now time.Time) (model.Screen, error) {
	p, err := m.store.GetPairingByCode(code)
	if err != nil {
		if db.IsNotFound(err) {
			return model.Screen{}, ErrCodeNotFound
		}
		return model.Screen{}, fmt.Errorf("look up pairing code: %w", err)
	}
	if p.Status == model.PairingStatusPaired {
		return model.Screen{}, ErrAlreadyPaired
	}
	if p.ExpiredAt(now) {
		return model.Screen{}, ErrCodeExpired
	}

	pl, err := m.store.GetPlaylistByID(playlistID)
	if err != nil {
		if db.IsNotFound(err) {
			return model.Screen{}, ErrPlaylistNotFound
		}
		return model.Screen{}, fmt.Errorf("look up playlist: %w", err)
	}
	if pl.TenantID != tenantID {
		return model.Screen{}, ErrPlaylistForbidden
	}

	deviceKey := NewDeviceKey()
	screen, ok, err := m.store.ClaimPairing(code, tenantID, screenName, deviceKey, playlistID, now)
	if err != nil {
		return model.Screen{}, fmt.Errorf("claim pairing: %w", err)
	}
	if !ok {
		// lost a race between the pre-checks and the guarded update;
		// re-read to classify the loss
		current, readErr := m.store.GetPairingByCode(code)
		if readErr == nil && current.Status == model.PairingStatusPaired {
			return model.Screen{}, ErrAlreadyPaired
		}
		return model.Screen{}, ErrCodeExpired
	}

	log.Info().
		Int("screen_id", screen.ID).
		Int("tenant_id", tenantID).
		Str("device_id", p.DeviceID).
		Msg("pairing claimed, screen provisioned")
	return screen, nil
}

// Status is the answer to an unprovisioned device's waiting poll.
type Status struct {
	Paired    bool
	Expired   bool
	DeviceKey string
	ScreenID  int
	ExpiresIn int // seconds until the pending code expires
}

// PollStatus looks up the device's most recent pairing record; the device
// polls by its own id because it may have reloaded and forgotten its code.
// Pure read, safe to poll on a short interval indefinitely.
func (m *Machine) PollStatus(deviceID string, now time.Time) (Status, error) {
	p, err := m.store.GetLatestPairingForDevice(deviceID)
	if err != nil {
		if db.IsNotFound(err) {
			return Status{}, ErrDeviceNotFound
		}
		return Status{}, fmt.Errorf("look up pairing for device: %w", err)
	}

	if p.Status == model.PairingStatusPaired && p.ScreenID != nil {
		screen, err := m.store.GetScreenByID(*p.ScreenID)
		if err != nil {
			return Status{}, fmt.Errorf("load paired screen: %w", err)
		}
		return Status{Paired: true, DeviceKey: screen.DeviceKey, ScreenID: screen.ID}, nil
	}
	if p.ExpiredAt(now) {
		return Status{Expired: true}, nil
	}
	return Status{ExpiresIn: int(p.ExpiresAt.Sub(now).Seconds())}, nil
}
