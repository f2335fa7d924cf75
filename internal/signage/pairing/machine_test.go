package pairing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/model"
)

// fakePairingStore mirrors the Postgres semantics the machine leans on: the
// partial unique indexes over pending rows and the guarded claim update.
type fakePairingStore struct {
	pairings  []*model.DevicePairing
	playlists map[int]model.Playlist
	screens   map[int]model.Screen
	nextID    int
}

func newFakePairingStore() *fakePairingStore {
	return &fakePairingStore{
		playlists: map[int]model.Playlist{
			1: {ID: 1, TenantID: 1},
			2: {ID: 2, TenantID: 2},
		},
		screens: map[int]model.Screen{},
	}
}

func (f *fakePairingStore) GetPendingPairingForDevice(deviceID string, now time.Time) (model.DevicePairing, error) {
	for _, p := range f.pairings {
		if p.DeviceID == deviceID && p.Status == model.PairingStatusPending && p.ExpiresAt.After(now) {
			return *p, nil
		}
	}
	return model.DevicePairing{}, db.ErrNotFound
}

func (f *fakePairingStore) ExpireStalePairings(deviceID string, now time.Time) error {
	for _, p := range f.pairings {
		if p.DeviceID == deviceID && p.Status == model.PairingStatusPending && !p.ExpiresAt.After(now) {
			p.Status = model.PairingStatusExpired
		}
	}
	return nil
}

func (f *fakePairingStore) CreatePairing(code, deviceID string, now, expiresAt time.Time) (model.DevicePairing, error) {
	for _, p := range f.pairings {
		if p.Status != model.PairingStatusPending {
			continue
		}
		if p.Code == code || p.DeviceID == deviceID {
			return model.DevicePairing{}, db.ErrDuplicate
		}
	}
	f.nextID++
	p := &model.DevicePairing{
		ID:        f.nextID,
		Code:      code,
		DeviceID:  deviceID,
		Status:    model.PairingStatusPending,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	f.pairings = append(f.pairings, p)
	return *p, nil
}

func (f *fakePairingStore) GetPairingByCode(code string) (model.DevicePairing, error) {
	for _, p := range f.pairings {
		if p.Code == code {
			return *p, nil
		}
	}
	return model.DevicePairing{}, db.ErrNotFound
}

func (f *fakePairingStore) GetLatestPairingForDevice(deviceID string) (model.DevicePairing, error) {
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

func (f *fakePairingStore) ClaimPairing(code string, tenantID int, screenName, deviceKey string, playlistID int, now time.Time) (model.Screen, bool, error) {
	for _, p := range f.pairings {
		if p.Code != code {
			continue
		}
		if p.Status != model.PairingStatusPending || !p.ExpiresAt.After(now) {
			return model.Screen{}, false, nil
		}
		screenID := 100 + len(f.screens)
		screen := model.Screen{
			ID:                screenID,
			TenantID:          tenantID,
			Name:              screenName,
			DeviceKey:         deviceKey,
			CurrentPlaylistID: &playlistID,
			Active:            true,
		}
		f.screens[screenID] = screen
		p.Status = model.PairingStatusPaired
		p.ScreenID = &screenID
		return screen, true, nil
	}
	return model.Screen{}, false, nil
}

func (f *fakePairingStore) GetPlaylistByID(id int) (model.Playlist, error) {
	pl, ok := f.playlists[id]
	if !ok {
		return model.Playlist{}, db.ErrNotFound
	}
	return pl, nil
}

func (f *fakePairingStore) GetScreenByID(id int) (model.Screen, error) {
	sc, ok := f.screens[id]
	if !ok {
		return model.Screen{}, db.ErrNotFound
	}
	return sc, nil
}

var pairNow = time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)

func TestGenerateCode_AlphabetAndLength(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(CodeAlphabet, c), "unexpected character %q in %s", c, code)
		}
		seen[code] = true
	}
	// 200 draws from a 31^6 space should essentially never collide
	assert.Greater(t, len(seen), 190)
}

func TestIssueOrReuseCode_IdempotentWhileLive(t *testing.T) {
	m := NewMachine(newFakePairingStore())

	first, err := m.IssueOrReuseCode("device-1", pairNow)
	require.NoError(t, err)

	second, err := m.IssueOrReuseCode("device-1", pairNow.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.ID, second.ID)
}

func TestIssueOrReuseCode_FreshCodeAfterExpiry(t *testing.T) {
	store := newFakePairingStore()
	m := NewMachine(store)

	first, err := m.IssueOrReuseCode("device-1", pairNow)
	require.NoError(t, err)

	later := pairNow.Add(CodeTTL + time.Minute)
	second, err := m.IssueOrReuseCode("device-1", later)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.ExpiresAt.After(later))

	// the stale row was reconciled, not left blocking the index
	old, err := store.GetPairingByCode(first.Code)
	require.NoError(t, err)
	assert.Equal(t, model.PairingStatusExpired, old.Status)
}

func TestIssueOrReuseCode_DistinctDevicesGetDistinctCodes(t *testing.T) {
	m := NewMachine(newFakePairingStore())

	a, err := m.IssueOrReuseCode("device-a", pairNow)
	require.NoError(t, err)
	b, err := m.IssueOrReuseCode("device-b", pairNow)
	require.NoError(t, err)
	assert.NotEqual(t, a.Code, b.Code)
}

func TestClaimCode_ProvisionsScreen(t *testing.T) {
	store := newFakePairingStore()
	m := NewMachine(store)

	issued, err := m.IssueOrReuseCode("device-1", pairNow)
	require.NoError(t, err)

	screen, err := m.ClaimCode(issued.Code, 1, 1, "Lobby TV", pairNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, screen.TenantID)
	assert.Equal(t, "Lobby TV", screen.Name)
	assert.NotEmpty(t, screen.DeviceKey)
	require.NotNil(t, screen.CurrentPlaylistID)
	assert.Equal(t, 1, *screen.CurrentPlaylistID)
}

func TestClaimCode_SecondClaimFails(t *testing.T) {
	m := NewMachine(newFakePairingStore())

	issued, err := m.IssueOrReuseCode("device-1", pairNow)
	require.NoError(t, err)

	_, err = m.ClaimCode(issued.Code, 1, 1, "First", pairNow.Add(time.Minute))
	require.NoError(t, err)

	_, err = m.ClaimCode(issued.Code, 1, 1, "Second", pairNow.Add(2*time.Minute))
	assert.True(t, IsAlreadyPaired(err))
}

func TestClaimCode_ErrorClassification(t *testing.T) {
	m := NewMachine(newFakePairingStore())

	issued, err := m.IssueOrReuseCode("device-1", pairNow)
	require.NoError(t, err)

	_, err = m.ClaimCode("ZZZZZZ", 1, 1, "TV", pairNow)
	assert.True(t, IsCodeNotFound(err))

	_, err = m.ClaimCode(issued.Code, 1, 1, "TV", pairNow.Add(CodeTTL+time.Minute))
	assert.True(t, IsCodeExpired(err))

	_, err = m.ClaimCode(issued.Code, 1, 99, "TV", pairNow)
	assert.True(t, IsPlaylistNotFound(err))

	// playlist 2 belongs to tenant 2
	_, err = m.ClaimCode(issued.Code, 1, 2, "TV", pairNow)
	assert.True(t, IsPlaylistForbidden(err))

	// none of the failed claims consumed the code
	_, err = m.ClaimCode(issued.Code, 1, 1, "TV", pairNow)
	assert.NoError(t, err)
}

func TestClaimCode_CrossTenantDenialLeavesCodeClaimable(t *testing.T) {
	m := NewMachine(newFakePairingStore())

	issued, err := m.IssueOrReuseCode("device-1", pairNow)
	require.NoError(t, err)

	_, err = m.ClaimCode(issued.Code, 2, 1, "TV", pairNow)
	assert.True(t, IsPlaylistForbidden(err))

	screen, err := m.ClaimCode(issued.Code, 1, 1, "TV", pairNow)
	require.NoError(t, err)
	assert.Equal(t, 1, screen.TenantID)
}

func TestPollStatus_Lifecycle(t *testing.T) {
	m := NewMachine(newFakePairingStore())

	_, err := m.PollStatus("device-1", pairNow)
	assert.True(t, IsDeviceNotFound(err))

	issued, err := m.IssueOrReuseCode("device-1", pairNow)
	require.NoError(t, err)

	waiting, err := m.PollStatus("device-1", pairNow.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, waiting.Paired)
	assert.False(t, waiting.Expired)
	assert.Empty(t, waiting.DeviceKey)
	assert.InDelta(t, int(CodeTTL.Seconds())-60, waiting.ExpiresIn, 1)

	screen, err := m.ClaimCode(issued.Code, 1, 1, "TV", pairNow.Add(2*time.Minute))
	require.NoError(t, err)

	paired, err := m.PollStatus("device-1", pairNow.Add(3*time.Minute))
	require.NoError(t, err)
	assert.True(t, paired.Paired)
	assert.Equal(t, screen.DeviceKey, paired.DeviceKey)
	assert.Equal(t, screen.ID, paired.ScreenID)
}

func TestPollStatus_ExpiredCode(t *testing.T) {
	m := NewMachine(newFakePairingStore())

	_, err := m.IssueOrReuseCode("device-1", pairNow)
	require.NoError(t, err)

	status, err := m.PollStatus("device-1", pairNow.Add(CodeTTL+time.Minute))
	require.NoError(t, err)
	assert.False(t, status.Paired)
	assert.True(t, status.Expired)
}

func TestPollStatus_PairedStatusSurvivesCodeExpiry(t *testing.T) {
	m := NewMachine(newFakePairingStore())

	issued, err := m.IssueOrReuseCode("device-1", pairNow)
	require.NoError(t, err)
	_, err = m.ClaimCode(issued.Code, 1, 1, "TV", pairNow.Add(time.Minute))
	require.NoError(t, err)

	// long after the code TTL, the pairing itself remains valid
	status, err := m.PollStatus("device-1", pairNow.Add(48*time.Hour))
	require.NoError(t, err)
	assert.True(t, status.Paired)
	assert.False(t, status.Expired)
}
