package model

import "time"

type Content struct {
	ID        int       `db:"id"         json:"id"`
	TenantID  int       `db:"tenant_id"  json:"tenant_id"`
	Name      string    `db:"name"       json:"name"`
	Type      string    `db:"type"       json:"type"`
	URL       string    `db:"url"        json:"url"`
	Duration  *int      `db:"duration"   json:"duration,omitempty"`
	Active    bool      `db:"active"     json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
