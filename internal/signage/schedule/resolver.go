// Package schedule resolves which playlist is active for a screen at a
// point in time.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/model"
)

// Source identifies which fallback level produced the active playlist.
type Source string

const (
	SourceSchedule Source = "schedule"
	SourceDirect   Source = "direct"
	SourceDefault  Source = "default"
	SourceNone     Source = ""
)

// Store is the slice of the persistence layer the resolver needs.
type Store interface {
	ListActiveScheduleRulesForScreen(screenID int) ([]model.ScheduleRule, error)
	GetDefaultPlaylistID(tenantID int) (int, error)
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the playlist active for the screen at now, walking the
// precedence chain: matching schedule rule, then the screen's direct
// assignment, then the tenant default. A zero playlist id with SourceNone
// means no content is assigned; that is a valid terminal state, not an error.
//
// All calendar fields (weekday, time of day, date) derive from the single
// now value, so a day rollover between two reads cannot split the decision.
func (r *Resolver) Resolve(screen model.Screen, now time.Time) (int, Source, error) {
	rules, err := r.store.ListActiveScheduleRulesForScreen(screen.ID)
	if err != nil {
		return 0, SourceNone, fmt.Errorf("list schedule rules: %w", err)
	}

	if id, ok := pickRule(rules, now); ok {
		return id, SourceSchedule, nil
	}

	if screen.CurrentPlaylistID != nil {
		return *screen.CurrentPlaylistID, SourceDirect, nil
	}

	id, err := r.store.GetDefaultPlaylistID(screen.TenantID)
	if err != nil {
		if db.IsNotFound(err) {
			return 0, SourceNone, nil
		}
		return 0, SourceNone, fmt.Errorf("get default playlist: %w", err)
	}
	return id, SourceDefault, nil
}

// pickRule selects the winning rule among those matching now. Highest
// priority wins; equal priorities tie-break on lowest rule id so the result
// never depends on row order.
func pickRule(rules []model.ScheduleRule, now time.Time) (int, bool) {
	matched := make([]model.ScheduleRule, 0, len(rules))
	for _, rule := range rules {
		if ruleMatches(rule, now) {
			matched = append(matched, rule)
		}
	}
	if len(matched) == 0 {
		return 0, false
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}
		return matched[i].ID < matched[j].ID
	})
	return matched[0].PlaylistID, true
}

func ruleMatches(rule model.ScheduleRule, now time.Time) bool {
	weekday := int64(now.Weekday())
	dayOK := false
	for _, d := range rule.DaysOfWeek {
		if d == weekday {
			dayOK = true
			break
		}
	}
	if !dayOK {
		return false
	}

	startMin, err := ParseClock(rule.StartTime)
	if err != nil {
		log.Warn().Err(err).Int("rule_id", rule.ID).Str("start_time", rule.StartTime).
			Msg("schedule rule has unparsable start time, skipping")
		return false
	}
	endMin, err := ParseClock(rule.EndTime)
	if err != nil {
		log.Warn().Err(err).Int("rule_id", rule.ID).Str("end_time", rule.EndTime).
			Msg("schedule rule has unparsable end time, skipping")
		return false
	}
	nowMin := now.Hour()*60 + now.Minute()
	// both bounds inclusive, same-day windows only
	if nowMin < startMin || nowMin > endMin {
		return false
	}

	today := now.Format("2006-01-02")
	if rule.StartDate != nil && today < rule.StartDate.Format("2006-01-02") {
		return false
	}
	if rule.EndDate != nil && today > rule.EndDate.Format("2006-01-02") {
		return false
	}
	return true
}

// ParseClock converts "HH:MM" or "HH:MM:SS" to minutes since midnight.
// Seconds are ignored; the schedule granularity is one minute.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in clock value %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in clock value %q", s)
	}
	return hour*60 + minute, nil
}
