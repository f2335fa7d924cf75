// Package db exposes a Store interface that is passed to API modules and
// core services instead of the raw connection.
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/overture-digital/marquee/internal/model"
)

type Store interface {
	// users
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// screens
	CreateScreen(tenantID int, name string, location *string, deviceKey string, playlistID *int) (model.Screen, error)
	GetScreenByID(id int) (model.Screen, error)
	GetScreenByDeviceKey(deviceKey string) (model.Screen, error)
	ListScreens(tenantID int) ([]model.Screen, error)
	UpdateScreen(id int, name, location *string) error
	AssignPlaylistToScreen(screenID int, playlistID *int) error
	TouchScreenLastSeen(screenID int, at time.Time) error
	DeactivateScreen(id int) error

	// content
	CreateContent(tenantID int, name, typ, url string, duration *int) (model.Content, error)
	GetContentByID(id int) (model.Content, error)
	ListContent(tenantID int) ([]model.Content, error)
	UpdateContent(id int, name, url *string, duration *int) error
	DeactivateContent(id int) error

	// playlists
	CreatePlaylist(tenantID int, name, transition string) (model.Playlist, error)
	GetPlaylistByID(id int) (model.Playlist, error)
	ListPlaylists(tenantID int) ([]model.Playlist, error)
	UpdatePlaylist(id int, name, transition *string) error
	DeletePlaylist(id int) error
	SetDefaultPlaylist(tenantID, playlistID int) error
	GetDefaultPlaylistID(tenantID int) (int, error)
	SetPlaylistSharing(id int, shared bool, token *string) error

	// playlist items
	AddItemToPlaylist(playlistID, contentID, position int, duration *int) (model.PlaylistItem, error)
	UpdatePlaylistItem(itemID int, position, duration *int) error
	RemovePlaylistItem(playlistID, itemID int) error
	ListPlaylistItems(playlistID int) ([]model.PlaylistItem, error)
	ReorderPlaylistItems(playlistID int, itemIDs []int) error
	GetResolvedItems(playlistID int) ([]model.ResolvedItem, error)

	// schedule rules
	CreateScheduleRule(r model.ScheduleRule) (model.ScheduleRule, error)
	GetScheduleRule(id int) (model.ScheduleRule, error)
	ListScheduleRulesForScreen(screenID int) ([]model.ScheduleRule, error)
	ListActiveScheduleRulesForScreen(screenID int) ([]model.ScheduleRule, error)
	UpdateScheduleRule(r model.ScheduleRule) error
	DeleteScheduleRule(id int) error

	// device pairings
	GetPendingPairingForDevice(deviceID string, now time.Time) (model.DevicePairing, error)
	CreatePairing(code, deviceID string, now, expiresAt time.Time) (model.DevicePairing, error)
	GetPairingByCode(code string) (model.DevicePairing, error)
	GetLatestPairingForDevice(deviceID string) (model.DevicePairing, error)
	ExpireStalePairings(deviceID string, now time.Time) error
	ClaimPairing(code string, tenantID int, screenName, deviceKey string, playlistID int, now time.Time) (model.Screen, bool, error)

	// playback analytics
	InsertPlaybackEvent(screenID, contentID int, at time.Time) error
}

type pgStore struct {
	db *sqlx.DB
}

var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	return &pgStore{db: conn}
}
