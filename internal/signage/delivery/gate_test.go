package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/model"
	"github.com/overture-digital/marquee/internal/signage/schedule"
)

type fakeDeliveryStore struct {
	screens   map[string]model.Screen
	playlists map[int]model.Playlist
	items     map[int][]model.ResolvedItem
	itemsErr  error
}

func (f *fakeDeliveryStore) GetScreenByDeviceKey(deviceKey string) (model.Screen, error) {
	sc, ok := f.screens[deviceKey]
	if !ok {
		return model.Screen{}, db.ErrNotFound
	}
	return sc, nil
}

func (f *fakeDeliveryStore) GetPlaylistByID(id int) (model.Playlist, error) {
	pl, ok := f.playlists[id]
	if !ok {
		return model.Playlist{}, db.ErrNotFound
	}
	return pl, nil
}

func (f *fakeDeliveryStore) GetResolvedItems(playlistID int) ([]model.ResolvedItem, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.items[playlistID], nil
}

type fakeResolver struct {
	playlistID int
	source     schedule.Source
	err        error
}

func (f *fakeResolver) Resolve(screen model.Screen, now time.Time) (int, schedule.Source, error) {
	return f.playlistID, f.source, f.err
}

type memCache struct {
	values map[int]string
	gets   int
	sets   int
}

func newMemCache() *memCache { return &memCache{values: map[int]string{}} }

func (m *memCache) Get(ctx context.Context, playlistID int) (string, bool) {
	m.gets++
	v, ok := m.values[playlistID]
	return v, ok
}

func (m *memCache) Set(ctx context.Context, playlistID int, v string) {
	m.sets++
	m.values[playlistID] = v
}

type fakeLiveness struct {
	touched []int
}

func (f *fakeLiveness) Touch(ctx context.Context, screenID int, at time.Time) {
	f.touched = append(f.touched, screenID)
}

func intPtr(v int) *int { return &v }

func newTestStore() *fakeDeliveryStore {
	return &fakeDeliveryStore{
		screens: map[string]model.Screen{
			"key-1": {ID: 1, TenantID: 1, DeviceKey: "key-1"},
		},
		playlists: map[int]model.Playlist{
			1: {ID: 1, TenantID: 1, Transition: model.TransitionFade,
				UpdatedAt: time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)},
		},
		items: map[int][]model.ResolvedItem{
			1: {
				{ContentID: 7, URL: "/uploads/a.png", Type: "image", Position: 0},
				{ContentID: 9, URL: "/uploads/b.mp4", Type: "video", Duration: intPtr(5), Position: 1},
			},
		},
	}
}

var testNow = time.Date(2026, 8, 19, 12, 30, 0, 0, time.UTC)

func TestCheckForUpdate_FirstPollDeliversFullPayload(t *testing.T) {
	store := newTestStore()
	gate := NewGate(store, &fakeResolver{playlistID: 1, source: schedule.SourceDirect}, nil, nil)

	update, err := gate.CheckForUpdate(context.Background(), "key-1", "", testNow)
	require.NoError(t, err)

	assert.True(t, update.NeedsUpdate)
	assert.NotEmpty(t, update.Version)
	assert.Equal(t, 1, update.PlaylistID)
	assert.Equal(t, schedule.SourceDirect, update.Source)
	assert.Equal(t, model.TransitionFade, update.Transition)
	require.Len(t, update.Items, 2)
	assert.Equal(t, 7, update.Items[0].ContentID)
	assert.Equal(t, 10, update.Items[0].Duration) // fallback
	assert.Equal(t, 5, update.Items[1].Duration)  // per-item override
}

func TestCheckForUpdate_UnchangedPollCarriesNoItems(t *testing.T) {
	store := newTestStore()
	gate := NewGate(store, &fakeResolver{playlistID: 1, source: schedule.SourceDirect}, nil, nil)

	first, err := gate.CheckForUpdate(context.Background(), "key-1", "", testNow)
	require.NoError(t, err)
	require.True(t, first.NeedsUpdate)

	second, err := gate.CheckForUpdate(context.Background(), "key-1", first.Version, testNow)
	require.NoError(t, err)
	assert.False(t, second.NeedsUpdate)
	assert.Equal(t, first.Version, second.Version)
	assert.Empty(t, second.Items)
}

func TestCheckForUpdate_ContentChangeFlipsVersion(t *testing.T) {
	store := newTestStore()
	gate := NewGate(store, &fakeResolver{playlistID: 1, source: schedule.SourceDirect}, nil, nil)

	first, err := gate.CheckForUpdate(context.Background(), "key-1", "", testNow)
	require.NoError(t, err)

	// a mutation reorders the items and bumps the playlist's updated_at
	store.items[1][0], store.items[1][1] = store.items[1][1], store.items[1][0]
	pl := store.playlists[1]
	pl.UpdatedAt = pl.UpdatedAt.Add(time.Minute)
	store.playlists[1] = pl

	second, err := gate.CheckForUpdate(context.Background(), "key-1", first.Version, testNow)
	require.NoError(t, err)
	assert.True(t, second.NeedsUpdate)
	assert.NotEqual(t, first.Version, second.Version)
	assert.Len(t, second.Items, 2)
}

func TestCheckForUpdate_GarbledClientVersionGetsFullPayload(t *testing.T) {
	store := newTestStore()
	gate := NewGate(store, &fakeResolver{playlistID: 1, source: schedule.SourceDirect}, nil, nil)

	update, err := gate.CheckForUpdate(context.Background(), "key-1", "not-a-real-version", testNow)
	require.NoError(t, err)
	assert.True(t, update.NeedsUpdate)
	assert.Len(t, update.Items, 2)
}

func TestCheckForUpdate_CacheFastPathSkipsLoading(t *testing.T) {
	store := newTestStore()
	cache := newMemCache()
	gate := NewGate(store, &fakeResolver{playlistID: 1, source: schedule.SourceDirect}, cache, nil)

	first, err := gate.CheckForUpdate(context.Background(), "key-1", "", testNow)
	require.NoError(t, err)
	require.True(t, first.NeedsUpdate)
	assert.Equal(t, 1, cache.sets)

	// break item loading; the cached fingerprint must satisfy the poll alone
	store.itemsErr = errors.New("db down")
	second, err := gate.CheckForUpdate(context.Background(), "key-1", first.Version, testNow)
	require.NoError(t, err)
	assert.False(t, second.NeedsUpdate)
	assert.Equal(t, first.Version, second.Version)
}

func TestCheckForUpdate_UnknownDeviceKey(t *testing.T) {
	gate := NewGate(newTestStore(), &fakeResolver{playlistID: 1}, nil, nil)

	_, err := gate.CheckForUpdate(context.Background(), "nope", "", testNow)
	assert.True(t, IsScreenNotFound(err))
}

func TestCheckForUpdate_NoContentAssigned(t *testing.T) {
	gate := NewGate(newTestStore(), &fakeResolver{playlistID: 0, source: schedule.SourceNone}, nil, nil)

	_, err := gate.CheckForUpdate(context.Background(), "key-1", "", testNow)
	assert.True(t, IsNoContentAssigned(err))
}

func TestCheckForUpdate_ResolverErrorPropagates(t *testing.T) {
	gate := NewGate(newTestStore(), &fakeResolver{err: errors.New("rules query failed")}, nil, nil)

	_, err := gate.CheckForUpdate(context.Background(), "key-1", "", testNow)
	require.Error(t, err)
	assert.False(t, IsNoContentAssigned(err))
}

func TestCheckForUpdate_PollTouchesLiveness(t *testing.T) {
	liveness := &fakeLiveness{}
	gate := NewGate(newTestStore(), &fakeResolver{playlistID: 1, source: schedule.SourceDirect}, nil, liveness)

	_, err := gate.CheckForUpdate(context.Background(), "key-1", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, liveness.touched)

	// liveness is refreshed even when nothing else is wrong with the poll
	_, err = gate.CheckForUpdate(context.Background(), "key-1", "", testNow)
	require.NoError(t, err)
	assert.Len(t, liveness.touched, 2)
}

func TestCheckForUpdate_EmptyPlaylistStillDelivers(t *testing.T) {
	store := newTestStore()
	store.items[1] = nil
	gate := NewGate(store, &fakeResolver{playlistID: 1, source: schedule.SourceDefault}, nil, nil)

	update, err := gate.CheckForUpdate(context.Background(), "key-1", "", testNow)
	require.NoError(t, err)
	assert.True(t, update.NeedsUpdate)
	assert.Empty(t, update.Items)
	assert.NotEmpty(t, update.Version)
}
