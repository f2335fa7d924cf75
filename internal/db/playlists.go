package db

import (
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/model"
)

const playlistColumns = `id, tenant_id, name, transition, is_default, shared, share_token, created_at, updated_at`

func (s *pgStore) CreatePlaylist(tenantID int, name, transition string) (model.Playlist, error) {
	var p model.Playlist
	const q = `
	INSERT INTO playlists (tenant_id, name, transition, is_default, shared, created_at, updated_at)
	VALUES ($1, $2, $3, false, false, now(), now())
	RETURNING ` + playlistColumns + `;`
	if err := s.db.Get(&p, q, tenantID, name, transition); err != nil {
		log.Error().Err(err).Msg("CreatePlaylist failed")
		return model.Playlist{}, err
	}
	return p, nil
}

func (s *pgStore) GetPlaylistByID(id int) (model.Playlist, error) {
	var p model.Playlist
	if err := s.db.Get(&p, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1;`, id); err != nil {
		return model.Playlist{}, err
	}
	items, err := s.ListPlaylistItems(id)
	if err != nil {
		return p, err
	}
	p.Items = items
	return p, nil
}

func (s *pgStore) ListPlaylists(tenantID int) ([]model.Playlist, error) {
	var out []model.Playlist
	const q = `
	SELECT ` + playlistColumns + `
	FROM playlists
	WHERE tenant_id = $1
	ORDER BY id;`
	if err := s.db.Select(&out, q, tenantID); err != nil {
		log.Error().Err(err).Int("tenant_id", tenantID).Msg("ListPlaylists failed")
		return nil, err
	}
	for i := range out {
		items, err := s.ListPlaylistItems(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *pgStore) UpdatePlaylist(id int, name, transition *string) error {
	_, err := s.db.Exec(`
		UPDATE playlists
		SET name = COALESCE($2, name),
		    transition = COALESCE($3, transition),
		    updated_at = now()
		WHERE id = $1;`, id, name, transition)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("UpdatePlaylist failed")
	}
	return err
}

func (s *pgStore) DeletePlaylist(id int) error {
	_, err := s.db.Exec(`DELETE FROM playlists WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("DeletePlaylist failed")
	}
	return err
}

// SetDefaultPlaylist enforces the at-most-one-default-per-tenant invariant
// with a clear-then-set inside a single transaction, so it holds under
// concurrent multi-instance deployments.
func (s *pgStore) SetDefaultPlaylist(tenantID, playlistID int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`
		UPDATE playlists
		SET is_default = false, updated_at = now()
		WHERE tenant_id = $1 AND is_default = true;`, tenantID); err != nil {
		return err
	}
	var updated int
	if err = tx.Get(&updated, `
		UPDATE playlists
		SET is_default = true, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING id;`, playlistID, tenantID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *pgStore) GetDefaultPlaylistID(tenantID int) (int, error) {
	var id int
	err := s.db.Get(&id, `
		SELECT id FROM playlists
		WHERE tenant_id = $1 AND is_default = true;`, tenantID)
	return id, err
}

func (s *pgStore) SetPlaylistSharing(id int, shared bool, token *string) error {
	_, err := s.db.Exec(`
		UPDATE playlists
		SET shared = $2,
		    share_token = $3,
		    updated_at = now()
		WHERE id = $1;`, id, shared, token)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("SetPlaylistSharing failed")
	}
	return err
}

// Item mutations bump the parent playlist's updated_at so the delivery
// fingerprint changes whenever the item set does.

func (s *pgStore) AddItemToPlaylist(playlistID, contentID, position int, duration *int) (model.PlaylistItem, error) {
	var it model.PlaylistItem
	const q = `
	INSERT INTO playlist_items (playlist_id, content_id, position, duration, created_at)
	VALUES ($1, $2, $3, $4, now())
	RETURNING id, playlist_id, content_id, position, duration, created_at;`
	if err := s.db.Get(&it, q, playlistID, contentID, position, duration); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("AddItemToPlaylist failed")
		return model.PlaylistItem{}, err
	}
	_, err := s.db.Exec(`UPDATE playlists SET updated_at = now() WHERE id = $1;`, playlistID)
	return it, err
}

func (s *pgStore) UpdatePlaylistItem(itemID int, position, duration *int) error {
	_, err := s.db.Exec(`
		UPDATE playlist_items
		SET position = COALESCE($2, position),
		    duration = COALESCE($3, duration)
		WHERE id = $1;`, itemID, position, duration)
	if err != nil {
		log.Error().Err(err).Int("item_id", itemID).Msg("UpdatePlaylistItem failed")
		return err
	}
	_, err = s.db.Exec(`
		UPDATE playlists SET updated_at = now()
		WHERE id = (SELECT playlist_id FROM playlist_items WHERE id = $1);`, itemID)
	return err
}

func (s *pgStore) RemovePlaylistItem(playlistID, itemID int) error {
	_, err := s.db.Exec(`
		DELETE FROM playlist_items WHERE id = $1 AND playlist_id = $2;`, itemID, playlistID)
	if err != nil {
		log.Error().Err(err).Int("item_id", itemID).Msg("RemovePlaylistItem failed")
		return err
	}
	_, err = s.db.Exec(`UPDATE playlists SET updated_at = now() WHERE id = $1;`, playlistID)
	return err
}

func (s *pgStore) ListPlaylistItems(playlistID int) ([]model.PlaylistItem, error) {
	var list []model.PlaylistItem
	const q = `
	SELECT id, playlist_id, content_id, position, duration, created_at
	FROM playlist_items
	WHERE playlist_id = $1
	ORDER BY position, id;`
	err := s.db.Select(&list, q, playlistID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("ListPlaylistItems failed")
	}
	return list, err
}

func (s *pgStore) ReorderPlaylistItems(playlistID int, itemIDs []int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// shift everything out of the way first to avoid transient collisions
	count := len(itemIDs)
	if _, err = tx.Exec(`
		UPDATE playlist_items
		SET position = position + $1
		WHERE playlist_id = $2;`, count, playlistID); err != nil {
		return err
	}

	for idx, itemID := range itemIDs {
		if _, err = tx.Exec(`
			UPDATE playlist_items
			SET position = $1
			WHERE id = $2 AND playlist_id = $3;`, idx, itemID, playlistID); err != nil {
			return err
		}
	}

	if _, err = tx.Exec(`UPDATE playlists SET updated_at = now() WHERE id = $1;`, playlistID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetResolvedItems returns the ordered, deliverable view of a playlist:
// items joined with their content rows, inactive content excluded, per-item
// duration overrides already coalesced against the content's intrinsic one.
func (s *pgStore) GetResolvedItems(playlistID int) ([]model.ResolvedItem, error) {
	var items []model.ResolvedItem
	const q = `
	SELECT
	  c.id AS content_id,
	  c.url,
	  c.type,
	  COALESCE(pi.duration, c.duration) AS duration,
	  pi.position
	FROM playlist_items pi
	JOIN content c ON c.id = pi.content_id
	WHERE pi.playlist_id = $1
	  AND c.active = true
	ORDER BY pi.position, pi.id;`
	if err := s.db.Select(&items, q, playlistID); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("GetResolvedItems failed")
		return nil, err
	}
	return items, nil
}
