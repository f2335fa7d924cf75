package db

import "time"

// InsertPlaybackEvent is a best-effort analytics write; callers never fail a
// playback loop on its error.
func (s *pgStore) InsertPlaybackEvent(screenID, contentID int, at time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO playback_events (screen_id, content_id, played_at)
		VALUES ($1, $2, $3);`, screenID, contentID, at)
	return err
}
