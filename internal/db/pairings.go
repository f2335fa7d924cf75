package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/model"
)

const pairingColumns = `id, code, device_id, status, screen_id, expires_at, paired_at, created_at`

func (s *pgStore) GetPendingPairingForDevice(deviceID string, now time.Time) (model.DevicePairing, error) {
	var p model.DevicePairing
	err := s.db.Get(&p, `
		SELECT `+pairingColumns+`
		FROM device_pairings
		WHERE device_id = $1
		  AND status = 'pending'
		  AND expires_at > $2
		ORDER BY id DESC
		LIMIT 1;`, deviceID, now)
	return p, err
}

// ExpireStalePairings reconciles stored status with the clock for a device's
// pending records. The partial unique indexes only cover status = 'pending',
// so rows that have timed out must be flipped before a fresh code is issued.
func (s *pgStore) ExpireStalePairings(deviceID string, now time.Time) error {
	_, err := s.db.Exec(`
		UPDATE device_pairings
		SET status = 'expired'
		WHERE device_id = $1
		  AND status = 'pending'
		  AND expires_at <= $2;`, deviceID, now)
	if err != nil {
		log.Error().Err(err).Str("device_id", deviceID).Msg("ExpireStalePairings failed")
	}
	return err
}

func (s *pgStore) CreatePairing(code, deviceID string, now, expiresAt time.Time) (model.DevicePairing, error) {
	var p model.DevicePairing
	const q = `
	INSERT INTO device_pairings (code, device_id, status, expires_at, created_at)
	VALUES ($1, $2, 'pending', $3, $4)
	RETURNING ` + pairingColumns + `;`
	err := s.db.Get(&p, q, code, deviceID, expiresAt, now)
	if err != nil {
		return model.DevicePairing{}, err
	}
	return p, nil
}

func (s *pgStore) GetPairingByCode(code string) (model.DevicePairing, error) {
	var p model.DevicePairing
	err := s.db.Get(&p, `
		SELECT `+pairingColumns+`
		FROM device_pairings
		WHERE code = $1
		ORDER BY id DESC
		LIMIT 1;`, code)
	return p, err
}

func (s *pgStore) GetLatestPairingForDevice(deviceID string) (model.DevicePairing, error) {
	var p model.DevicePairing
	err := s.db.Get(&p, `
		SELECT `+pairingColumns+`
		FROM device_pairings
		WHERE device_id = $1
		ORDER BY id DESC
		LIMIT 1;`, deviceID)
	return p, err
}

// ClaimPairing provisions a screen and marks the pairing record paired in a
// single transaction. The conditional UPDATE is the single-claim guard: it
// only fires while the record is still pending and unexpired, so exactly one
// concurrent claimant can win. Returns ok = false when the guard rejects,
// with the whole transaction rolled back (no orphan screen).
func (s *pgStore) ClaimPairing(code string, tenantID int, screenName, deviceKey string, playlistID int, now time.Time) (model.Screen, bool, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return model.Screen{}, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var sc model.Screen
	const insertScreen = `
	INSERT INTO screens
	  (tenant_id, name, device_key, current_playlist_id, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, true, now(), now())
	RETURNING ` + screenColumns + `;`
	if err = tx.Get(&sc, insertScreen, tenantID, screenName, deviceKey, playlistID); err != nil {
		log.Error().Err(err).Str("code", code).Msg("ClaimPairing: screen insert failed")
		return model.Screen{}, false, err
	}

	res, err := tx.Exec(`
		UPDATE device_pairings
		SET status = 'paired',
		    screen_id = $2,
		    paired_at = $3
		WHERE code = $1
		  AND status = 'pending'
		  AND expires_at > $3;`, code, sc.ID, now)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("ClaimPairing: pairing update failed")
		return model.Screen{}, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Screen{}, false, err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return model.Screen{}, false, nil
	}

	if err = tx.Commit(); err != nil {
		return model.Screen{}, false, err
	}
	return sc, true, nil
}
