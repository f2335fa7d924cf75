package db

import (
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/model"
)

const scheduleRuleColumns = `
	id, screen_id, playlist_id, name, start_time, end_time, days_of_week,
	start_date, end_date, priority, active, created_at, updated_at`

func (s *pgStore) CreateScheduleRule(r model.ScheduleRule) (model.ScheduleRule, error) {
	var out model.ScheduleRule
	const q = `
	INSERT INTO schedule_rules
	  (screen_id, playlist_id, name, start_time, end_time, days_of_week,
	   start_date, end_date, priority, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, now(), now())
	RETURNING ` + scheduleRuleColumns + `;`
	err := s.db.Get(&out, q,
		r.ScreenID, r.PlaylistID, r.Name, r.StartTime, r.EndTime, r.DaysOfWeek,
		r.StartDate, r.EndDate, r.Priority)
	if err != nil {
		log.Error().Err(err).Int("screen_id", r.ScreenID).Msg("CreateScheduleRule failed")
		return model.ScheduleRule{}, err
	}
	return out, nil
}

func (s *pgStore) GetScheduleRule(id int) (model.ScheduleRule, error) {
	var r model.ScheduleRule
	err := s.db.Get(&r, `SELECT `+scheduleRuleColumns+` FROM schedule_rules WHERE id = $1;`, id)
	return r, err
}

func (s *pgStore) ListScheduleRulesForScreen(screenID int) ([]model.ScheduleRule, error) {
	var rules []model.ScheduleRule
	err := s.db.Select(&rules, `
		SELECT `+scheduleRuleColumns+`
		FROM schedule_rules
		WHERE screen_id = $1
		ORDER BY priority DESC, id;`, screenID)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("ListScheduleRulesForScreen failed")
		return nil, err
	}
	return rules, nil
}

func (s *pgStore) ListActiveScheduleRulesForScreen(screenID int) ([]model.ScheduleRule, error) {
	var rules []model.ScheduleRule
	err := s.db.Select(&rules, `
		SELECT `+scheduleRuleColumns+`
		FROM schedule_rules
		WHERE screen_id = $1 AND active = true
		ORDER BY priority DESC, id;`, screenID)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screenID).Msg("ListActiveScheduleRulesForScreen failed")
		return nil, err
	}
	return rules, nil
}

func (s *pgStore) UpdateScheduleRule(r model.ScheduleRule) error {
	_, err := s.db.Exec(`
		UPDATE schedule_rules
		SET playlist_id = $2,
		    name = $3,
		    start_time = $4,
		    end_time = $5,
		    days_of_week = $6,
		    start_date = $7,
		    end_date = $8,
		    priority = $9,
		    active = $10,
		    updated_at = now()
		WHERE id = $1;`,
		r.ID, r.PlaylistID, r.Name, r.StartTime, r.EndTime, r.DaysOfWeek,
		r.StartDate, r.EndDate, r.Priority, r.Active)
	if err != nil {
		log.Error().Err(err).Int("rule_id", r.ID).Msg("UpdateScheduleRule failed")
	}
	return err
}

func (s *pgStore) DeleteScheduleRule(id int) error {
	_, err := s.db.Exec(`DELETE FROM schedule_rules WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Int("rule_id", id).Msg("DeleteScheduleRule failed")
	}
	return err
}
