package endpoints

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/http/api"
	"github.com/overture-digital/marquee/internal/model"
	"github.com/overture-digital/marquee/internal/signage/delivery"
	"github.com/overture-digital/marquee/internal/signage/heartbeat"
	"github.com/overture-digital/marquee/internal/signage/pairing"
	"github.com/overture-digital/marquee/internal/signage/schedule"
)

// fakeStore embeds the Store interface so only the methods these endpoints
// reach need real implementations; anything else panics loudly.
type fakeStore struct {
	db.Store

	screens   map[string]model.Screen
	screenIDs map[int]model.Screen
	playlists map[int]model.Playlist
	items     map[int][]model.ResolvedItem
	pairings  []*model.DevicePairing
	playback  []int
	nextID    int
}

func newFakeStore() *fakeStore {
	pl := model.Playlist{
		ID: 1, TenantID: 1, Transition: model.TransitionFade,
		UpdatedAt: time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC),
	}
	dur := 5
	screen := model.Screen{ID: 1, TenantID: 1, DeviceKey: "key-1", CurrentPlaylistID: &pl.ID, Active: true}
	return &fakeStore{
		screens:   map[string]model.Screen{"key-1": screen},
		screenIDs: map[int]model.Screen{1: screen},
		playlists: map[int]model.Playlist{1: pl},
		items: map[int][]model.ResolvedItem{
			1: {
				{ContentID: 7, URL: "/uploads/a.png", Type: "image", Position: 0},
				{ContentID: 9, URL: "/uploads/b.mp4", Type: "video", Duration: &dur, Position: 1},
			},
		},
	}
}

func (f *fakeStore) GetScreenByDeviceKey(deviceKey string) (model.Screen, error) {
	sc, ok := f.screens[deviceKey]
	if !ok {
		return model.Screen{}, db.ErrNotFound
	}
	return sc, nil
}

func (f *fakeStore) GetScreenByID(id int) (model.Screen, error) {
	sc, ok := f.screenIDs[id]
	if !ok {
		return model.Screen{}, db.ErrNotFound
	}
	return sc, nil
}

func (f *fakeStore) GetPlaylistByID(id int) (model.Playlist, error) {
	pl, ok := f.playlists[id]
	if !ok {
		return model.Playlist{}, db.ErrNotFound
	}
	return pl, nil
}

func (f *fakeStore) GetResolvedItems(playlistID int) ([]model.ResolvedItem, error) {
	return f.items[playlistID], nil
}

func (f *fakeStore) ListActiveScheduleRulesForScreen(screenID int) ([]model.ScheduleRule, error) {
	return nil, nil
}

func (f *fakeStore) GetDefaultPlaylistID(tenantID int) (int, error) {
	return 0, db.ErrNotFound
}

func (f *fakeStore) TouchScreenLastSeen(screenID int, at time.Time) error {
	return nil
}

func (f *fakeStore) InsertPlaybackEvent(screenID, contentID int, at time.Time) error {
	f.playback = append(f.playback, contentID)
	return nil
}

func (f *fakeStore) GetPendingPairingForDevice(deviceID string, now time.Time) (model.DevicePairing, error) {
	for _, p := range f.pairings {
		if p.DeviceID == deviceID && p.Status == model.PairingStatusPending && p.ExpiresAt.After(now) {
			return *p, nil
		}
	}
	return model.DevicePairing{}, db.ErrNotFound
}

func (f *fakeStore) ExpireStalePairings(deviceID string, now time.Time) error {
	for _, p := range f.pairings {
		if p.DeviceID == deviceID && p.Status == model.PairingStatusPending && !p.ExpiresAt.After(now) {
			p.Status = model.PairingStatusExpired
		}
	}
	return nil
}

func (f *fakeStore) CreatePairing(code, deviceID string, now, expiresAt time.Time) (model.DevicePairing, error) {
	for _, p := range f.pairings {
		if p.Status == model.PairingStatusPending && (p.Code == code || p.DeviceID == deviceID) {
			return model.DevicePairing{}, db.ErrDuplicate
		}
	}
	f.nextID++
	p := &model.DevicePairing{
		ID: f.nextID, Code: code, DeviceID: deviceID,
		Status: model.PairingStatusPending, CreatedAt: now, ExpiresAt: expiresAt,
	}
	f.pairings = append(f.pairings, p)
	return *p, nil
}

func (f *fakeStore) GetPairingByCode(code string) (model.DevicePairing, error) {
	for _, p := range f.pairings {
		if p.Code == code {
			return *p, nil
		}
	}
	return model.DevicePairing{}, db.ErrNotFound
}

func (f *fakeStore) GetLatestPairingForDevice(deviceID string) (model.DevicePairing, error) {
	var latest *model.DevicePairing
	for _, p := range f.pairings {
		if p.DeviceID == deviceID && (latest == nil || p.ID > latest.ID) {
			latest = p
		}
	}
	if latest == nil {
		return model.DevicePairing{}, db.ErrNotFound
	}
	return *latest, nil
}

func (f *fakeStore) ClaimPairing(code string, tenantID int, screenName, deviceKey string, playlistID int, now time.Time) (model.Screen, bool, error) {
	for _, p := range f.pairings {
		if p.Code != code {
			continue
		}
		if p.Status != model.PairingStatusPending || !p.ExpiresAt.After(now) {
			return model.Screen{}, false, nil
		}
		screenID := 100 + len(f.screenIDs)
		screen := model.Screen{
			ID: screenID, TenantID: tenantID, Name: screenName,
			DeviceKey: deviceKey, CurrentPlaylistID: &playlistID, Active: true,
		}
		f.screens[deviceKey] = screen
		f.screenIDs[screenID] = screen
		p.Status = model.PairingStatusPaired
		p.ScreenID = &screenID
		return screen, true, nil
	}
	return model.Screen{}, false, nil
}

func newTestRouter(store *fakeStore) (*gin.Engine, *pairing.Machine) {
	tracker := heartbeat.NewTracker(store, nil)
	resolver := schedule.NewResolver(store)
	gate := delivery.NewGate(store, resolver, nil, tracker)
	machine := pairing.NewMachine(store)

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/tv"},
		PairingModule(machine),
		PlayerModule(store, gate, tracker),
	)
	return r, machine
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckUpdates_RequiresDeviceKey(t *testing.T) {
	r, _ := newTestRouter(newFakeStore())
	w := doJSON(t, r, http.MethodGet, "/api/tv/player/updates", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckUpdates_UnknownDeviceKey(t *testing.T) {
	r, _ := newTestRouter(newFakeStore())
	w := doJSON(t, r, http.MethodGet, "/api/tv/player/updates?device_key=bogus", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckUpdates_FullFlow(t *testing.T) {
	r, _ := newTestRouter(newFakeStore())

	w := doJSON(t, r, http.MethodGet, "/api/tv/player/updates?device_key=key-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var first struct {
		Success     bool   `json:"success"`
		NeedsUpdate bool   `json:"needs_update"`
		Version     string `json:"version"`
		ItemCount   int    `json:"item_count"`
		Items       []struct {
			ContentID       int `json:"content_id"`
			DisplayDuration int `json:"display_duration"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.True(t, first.Success)
	assert.True(t, first.NeedsUpdate)
	assert.NotEmpty(t, first.Version)
	assert.Equal(t, 2, first.ItemCount)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 10, first.Items[0].DisplayDuration)
	assert.Equal(t, 5, first.Items[1].DisplayDuration)

	// echoing the version back yields an unchanged answer with no payload
	w = doJSON(t, r, http.MethodGet, "/api/tv/player/updates?device_key=key-1&version="+first.Version, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var second struct {
		NeedsUpdate bool   `json:"needs_update"`
		Version     string `json:"version"`
		ItemCount   int    `json:"item_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.False(t, second.NeedsUpdate)
	assert.Equal(t, first.Version, second.Version)
	assert.Zero(t, second.ItemCount)
}

func TestCheckUpdates_NoPlaylistAssigned(t *testing.T) {
	store := newFakeStore()
	sc := store.screens["key-1"]
	sc.CurrentPlaylistID = nil
	store.screens["key-1"] = sc

	r, _ := newTestRouter(store)
	w := doJSON(t, r, http.MethodGet, "/api/tv/player/updates?device_key=key-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no playlist assigned")
}

func TestHeartbeat(t *testing.T) {
	r, _ := newTestRouter(newFakeStore())

	w := doJSON(t, r, http.MethodPost, "/api/tv/player/heartbeat", gin.H{"device_key": "key-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/tv/player/heartbeat", gin.H{"device_key": "bogus"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlaybackLog(t *testing.T) {
	store := newFakeStore()
	r, _ := newTestRouter(store)

	w := doJSON(t, r, http.MethodPost, "/api/tv/player/playback", gin.H{"device_key": "key-1", "content_id": 7})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{7}, store.playback)
}

func TestPairing_RegisterCheckClaim(t *testing.T) {
	store := newFakeStore()
	r, machine := newTestRouter(store)

	w := doJSON(t, r, http.MethodPost, "/api/tv/pairing/register", gin.H{"device_id": "device-1"})
	require.Equal(t, http.StatusOK, w.Code)

	var issued struct {
		Code      string `json:"code"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued))
	assert.Len(t, issued.Code, pairing.CodeLength)
	assert.Greater(t, issued.ExpiresIn, 0)

	// registering again reuses the same code
	w = doJSON(t, r, http.MethodPost, "/api/tv/pairing/register", gin.H{"device_id": "device-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), issued.Code)

	// still waiting
	w = doJSON(t, r, http.MethodGet, "/api/tv/pairing/check?device_id=device-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var waiting struct {
		Paired  bool `json:"paired"`
		Expired bool `json:"expired"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &waiting))
	assert.False(t, waiting.Paired)
	assert.False(t, waiting.Expired)

	// an admin claims the code out of band
	screen, err := machine.ClaimCode(issued.Code, 1, 1, "Lobby TV", time.Now())
	require.NoError(t, err)

	w = doJSON(t, r, http.MethodGet, "/api/tv/pairing/check?device_id=device-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var paired struct {
		Paired    bool   `json:"paired"`
		ViewerURL string `json:"viewer_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paired))
	assert.True(t, paired.Paired)
	assert.Equal(t, fmt.Sprintf("/viewer?device_key=%s", screen.DeviceKey), paired.ViewerURL)
}

func TestPairing_CheckUnknownDevice(t *testing.T) {
	r, _ := newTestRouter(newFakeStore())

	w := doJSON(t, r, http.MethodGet, "/api/tv/pairing/check?device_id=nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/tv/pairing/check", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
