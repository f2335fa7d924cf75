package db

import (
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/model"
)

const contentColumns = `id, tenant_id, name, type, url, duration, active, created_at, updated_at`

func (s *pgStore) CreateContent(tenantID int, name, typ, url string, duration *int) (model.Content, error) {
	var c model.Content
	const q = `
	INSERT INTO content (tenant_id, name, type, url, duration, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, true, now(), now())
	RETURNING ` + contentColumns + `;`
	if err := s.db.Get(&c, q, tenantID, name, typ, url, duration); err != nil {
		log.Error().Err(err).Msg("CreateContent failed")
		return model.Content{}, err
	}
	return c, nil
}

func (s *pgStore) GetContentByID(id int) (model.Content, error) {
	var c model.Content
	err := s.db.Get(&c, `SELECT `+contentColumns+` FROM content WHERE id = $1;`, id)
	return c, err
}

func (s *pgStore) ListContent(tenantID int) ([]model.Content, error) {
	var all []model.Content
	err := s.db.Select(&all, `
		SELECT `+contentColumns+`
		FROM content
		WHERE tenant_id = $1 AND active = true
		ORDER BY id;`, tenantID)
	if err != nil {
		log.Error().Err(err).Int("tenant_id", tenantID).Msg("ListContent failed")
		return nil, err
	}
	return all, nil
}

func (s *pgStore) UpdateContent(id int, name, url *string, duration *int) error {
	_, err := s.db.Exec(`
		UPDATE content
		SET name = COALESCE($2, name),
		    url = COALESCE($3, url),
		    duration = COALESCE($4, duration),
		    updated_at = now()
		WHERE id = $1;`, id, name, url, duration)
	if err != nil {
		log.Error().Err(err).Int("content_id", id).Msg("UpdateContent failed")
	}
	return err
}

// DeactivateContent soft-deletes a content row. Playlist items referencing it
// stay in place but drop out of resolved item lists.
func (s *pgStore) DeactivateContent(id int) error {
	_, err := s.db.Exec(`
		UPDATE content
		SET active = false,
		    updated_at = now()
		WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("content_id", id).Msg("DeactivateContent failed")
	}
	return err
}
