package model

import (
	"time"

	"github.com/lib/pq"
)

// ScheduleRule is a time-of-day window that overrides a screen's static
// playlist assignment. Start and end clocks are inclusive and same-day only;
// days of week use time.Weekday numbering (0 = Sunday).
type ScheduleRule struct {
	ID         int           `db:"id"           json:"id"`
	ScreenID   int           `db:"screen_id"    json:"screen_id"`
	PlaylistID int           `db:"playlist_id"  json:"playlist_id"`
	Name       string        `db:"name"         json:"name"`
	StartTime  string        `db:"start_time"   json:"start_time"`
	EndTime    string        `db:"end_time"     json:"end_time"`
	DaysOfWeek pq.Int64Array `db:"days_of_week" json:"days_of_week"`
	StartDate  *time.Time    `db:"start_date"   json:"start_date,omitempty"`
	EndDate    *time.Time    `db:"end_date"     json:"end_date,omitempty"`
	Priority   int           `db:"priority"     json:"priority"`
	Active     bool          `db:"active"       json:"active"`
	CreatedAt  time.Time     `db:"created_at"   json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"   json:"updated_at"`
}
