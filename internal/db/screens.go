package db

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/model"
)

const screenColumns = `
	id, tenant_id, device_key, name, location, current_playlist_id,
	last_seen_at, active, created_at, updated_at`

func (s *pgStore) CreateScreen(tenantID int, name string, location *string, deviceKey string, playlistID *int) (model.Screen, error) {
	var sc model.Screen
	const q = `
	INSERT INTO screens
	  (tenant_id, name, location, device_key, current_playlist_id, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, true, now(), now())
	RETURNING ` + screenColumns + `;`
	if err := s.db.Get(&sc, q, tenantID, name, location, deviceKey, playlistID); err != nil {
		log.Error().Err(err).Msg("CreateScreen failed")
		return model.Screen{}, err
	}
	return sc, nil
}

func (s *pgStore) GetScreenByID(id int) (model.Screen, error) {
	var sc model.Screen
	err := s.db.Get(&sc, `SELECT `+screenColumns+` FROM screens WHERE id = $1;`, id)
	return sc, err
}

func (s *pgStore) GetScreenByDeviceKey(deviceKey string) (model.Screen, error) {
	var sc model.Screen
	err := s.db.Get(&sc, `
		SELECT `+screenColumns+`
		FROM screens
		WHERE device_key = $1 AND active = true;`, deviceKey)
	return sc, err
}

func (s *pgStore) ListScreens(tenantID int) ([]model.Screen, error) {
	var screens []model.Screen
	err := s.db.Select(&screens, `
		SELECT `+screenColumns+`
		FROM screens
		WHERE tenant_id = $1 AND active = true
		ORDER BY id;`, tenantID)
	if err != nil {
		log.Error().Err(err).Int("tenant_id", tenantID).Msg("ListScreens failed")
		return nil, err
	}
	return screens, nil
}

func (s *pgStore) UpdateScreen(id int, name, location *string) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET name = COALESCE($2, name),
		    location = COALESCE($3, location),
		    updated_at = now()
		WHERE id = $1;`, id, name, location)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("UpdateScreen failed")
	}
	return err
}

func (s *pgStore) AssignPlaylistToScreen(screenID int, playlistID *int) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET current_playlist_id = $2,
		    updated_at = now()
		WHERE id = $1;`, screenID, playlistID)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("AssignPlaylistToScreen failed")
	}
	return err
}

// TouchScreenLastSeen records device liveness. It deliberately does not bump
// updated_at: heartbeats are not edits.
func (s *pgStore) TouchScreenLastSeen(screenID int, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET last_seen_at = $2
		WHERE id = $1;`, screenID, at)
	return err
}

func (s *pgStore) DeactivateScreen(id int) error {
	_, err := s.db.Exec(`
		UPDATE screens
		SET active = false,
		    updated_at = now()
		WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("DeactivateScreen failed")
	}
	return err
}
