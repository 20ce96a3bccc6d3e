package data_test

import (
	"path/filepath"
	"testing"

	"github.com/cryptiklemur/discordarr/src/data"
	"github.com/cryptiklemur/discordarr/src/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *data.Store {
	t.Helper()
	db, err := data.ConnectSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, data.Migrate(db))
	return data.NewStore(db)
}

func TestPendingLifecycle(t *testing.T) {
	store := newTestStore(t)

	requestID := uint64(42)
	id, err := store.CreatePending(&types.PendingRequest{
		OverseerrRequestID: &requestID,
		TmdbID:             550,
		MediaType:          types.MediaTypeMovie,
		OverseerrUserID:    1,
		Title:              "Fight Club",
		Phase:              types.PhaseUnposted,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := store.GetPending(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Fight Club", got.Title)
	assert.Equal(t, types.PhaseUnposted, got.Phase)

	byReq, err := store.FindPendingByOverseerrID(requestID)
	require.NoError(t, err)
	require.NotNil(t, byReq)
	assert.Equal(t, id, byReq.ID)

	missing, err := store.FindPendingByOverseerrID(999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.RemovePending(id))
	got, err = store.GetPending(id)
	require.NoError(t, err)
	assert.Nil(t, got)

	// removing again is a no-op
	require.NoError(t, store.RemovePending(id))
}

func TestDuplicateOverseerrIDRejected(t *testing.T) {
	store := newTestStore(t)

	requestID := uint64(7)
	_, err := store.CreatePending(&types.PendingRequest{
		OverseerrRequestID: &requestID,
		TmdbID:             1,
		MediaType:          types.MediaTypeMovie,
		OverseerrUserID:    1,
		Phase:              types.PhaseUnposted,
	})
	require.NoError(t, err)

	dup := requestID
	_, err = store.CreatePending(&types.PendingRequest{
		OverseerrRequestID: &dup,
		TmdbID:             1,
		MediaType:          types.MediaTypeMovie,
		OverseerrUserID:    1,
		Phase:              types.PhaseUnposted,
	})
	assert.Error(t, err)
}

func TestUnpostedListingAndMarkPosted(t *testing.T) {
	store := newTestStore(t)

	id, err := store.CreatePending(&types.PendingRequest{
		TmdbID:          550,
		MediaType:       types.MediaTypeMovie,
		OverseerrUserID: 1,
		Phase:           types.PhaseUnposted,
	})
	require.NoError(t, err)

	unposted, err := store.ListUnpostedPending()
	require.NoError(t, err)
	require.Len(t, unposted, 1)

	require.NoError(t, store.MarkPendingPosted(id, "chan", "msg", "thread", "", ""))

	unposted, err = store.ListUnpostedPending()
	require.NoError(t, err)
	assert.Empty(t, unposted)

	got, err := store.GetPending(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.PhasePosted, got.Phase)
	assert.Equal(t, "chan", got.ChannelID)
	assert.Equal(t, "msg", got.MessageID)
	assert.Equal(t, "thread", got.ThreadID)
}

func TestTrackedLifecycle(t *testing.T) {
	store := newTestStore(t)

	req := &types.TrackedRequest{
		RequestID:     10,
		TmdbID:        550,
		MediaType:     types.MediaTypeMovie,
		DiscordUserID: "user-1",
		Title:         "Fight Club",
	}
	require.NoError(t, store.UpsertTracked(req))

	got, err := store.GetTracked(10)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Fight Club", got.Title)
	assert.Nil(t, got.LastProgress)
	assert.False(t, got.CaughtUpNotified)

	// upsert replaces, it does not duplicate
	req.Title = "Fight Club (1999)"
	require.NoError(t, store.UpsertTracked(req))
	all, err := store.ListTracked()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Fight Club (1999)", all[0].Title)

	byUser, err := store.ListTrackedByUser("user-1")
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
	byUser, err = store.ListTrackedByUser("someone-else")
	require.NoError(t, err)
	assert.Empty(t, byUser)

	require.NoError(t, store.UpdateTrackedProgress(10, 42.5))
	require.NoError(t, store.UpdateTrackedThreadMessage(10, "thread-msg"))
	require.NoError(t, store.MarkCaughtUpNotified(10))

	got, err = store.GetTracked(10)
	require.NoError(t, err)
	require.NotNil(t, got.LastProgress)
	assert.InDelta(t, 42.5, *got.LastProgress, 0.001)
	assert.Equal(t, "thread-msg", got.LastThreadMessageID)
	assert.True(t, got.CaughtUpNotified)

	require.NoError(t, store.RemoveTracked(10))
	got, err = store.GetTracked(10)
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, store.RemoveTracked(10))
}

func TestListTrackedMissingTvdbID(t *testing.T) {
	store := newTestStore(t)

	tvdb := uint64(12345)
	require.NoError(t, store.UpsertTracked(&types.TrackedRequest{RequestID: 1, TmdbID: 100, MediaType: types.MediaTypeTV}))
	require.NoError(t, store.UpsertTracked(&types.TrackedRequest{RequestID: 2, TmdbID: 200, MediaType: types.MediaTypeTV, TvdbID: &tvdb}))
	require.NoError(t, store.UpsertTracked(&types.TrackedRequest{RequestID: 3, TmdbID: 300, MediaType: types.MediaTypeMovie}))

	missing, err := store.ListTrackedMissingTvdbID()
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, uint64(1), missing[0].RequestID)

	require.NoError(t, store.UpdateTrackedTvdbID(1, 54321))
	missing, err = store.ListTrackedMissingTvdbID()
	require.NoError(t, err)
	assert.Empty(t, missing)
}
