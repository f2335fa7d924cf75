package model

import "time"

// User doubles as the tenant boundary: screens, playlists and content are
// always scoped by the owning user's id.
type User struct {
	ID             int       `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Name           *string   `db:"name"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
