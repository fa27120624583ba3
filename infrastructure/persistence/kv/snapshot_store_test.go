package kv

import (
	"context"
	"testing"
	"time"

	"safesite-backend/domain/checklist"
	"safesite-backend/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*SnapshotStore, *memory.KVStore) {
	t.Helper()
	backend := memory.NewKVStore()
	return NewSnapshotStore(backend, zap.NewNop()), backend
}

func snapshotAt(templateID string, at time.Time, value string) *checklist.Snapshot {
	store := checklist.NewStore(templateID)
	store.SetValue("site-location", value)
	return checklist.TakeSnapshot(store, at)
}

func TestKeys(t *testing.T) {
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, "checklist-general-site-safety-responses", LiveKey("general-site-safety"))
	assert.Equal(t, "checklist-general-site-safety-2025-06-01T08:00:00Z", HistoryKey("general-site-safety", at))

	assert.False(t, IsHistoryKey(LiveKey("t"), "t"))
	assert.True(t, IsHistoryKey(HistoryKey("t", at), "t"))
	assert.False(t, IsHistoryKey("checklist-other-2025", "t"))
}

func TestSnapshotStore_LiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	got, err := store.GetLive(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Nil(t, got, "no snapshot before the first write")

	snap := snapshotAt("general-site-safety", time.Now().UTC(), "North gate")
	require.NoError(t, store.PutLive(ctx, "user-1", snap))

	got, err = store.GetLive(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "North gate", got.Responses["site-location"].Value)

	// Last write wins, whole-store overwrite.
	require.NoError(t, store.PutLive(ctx, "user-1", snapshotAt("general-site-safety", time.Now().UTC(), "South gate")))
	got, err = store.GetLive(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Equal(t, "South gate", got.Responses["site-location"].Value)
}

func TestSnapshotStore_LiveSnapshotsAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.PutLive(ctx, "user-1", snapshotAt("t", time.Now(), "user one's answer")))

	got, err := store.GetLive(ctx, "user-2", "t")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotStore_CorruptLiveEntryTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)

	require.NoError(t, backend.Set(ctx, "user-1", LiveKey("t"), "{not json"))

	got, err := store.GetLive(ctx, "user-1", "t")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotStore_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := store.AppendHistory(ctx, "user-1", snapshotAt("t", base.Add(time.Duration(i)*time.Hour), "v"))
		require.NoError(t, err)
	}

	snapshots, err := store.ListHistory(ctx, "user-1", "t")
	require.NoError(t, err)
	require.Len(t, snapshots, 3)
	assert.True(t, snapshots[0].CreatedAt.After(snapshots[1].CreatedAt))
	assert.True(t, snapshots[1].CreatedAt.After(snapshots[2].CreatedAt))
	for _, sn := range snapshots {
		assert.NotEmpty(t, sn.Key)
	}
}

func TestSnapshotStore_ListHistorySkipsLiveAndCorruptEntries(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.PutLive(ctx, "user-1", snapshotAt("t", base, "live")))
	_, err := store.AppendHistory(ctx, "user-1", snapshotAt("t", base, "good"))
	require.NoError(t, err)
	require.NoError(t, backend.Set(ctx, "user-1", HistoryKey("t", base.Add(time.Hour)), "{corrupt"))
	// A different template's entries never leak in.
	_, err = store.AppendHistory(ctx, "user-1", snapshotAt("other", base, "other"))
	require.NoError(t, err)

	snapshots, err := store.ListHistory(ctx, "user-1", "t")
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "good", snapshots[0].Responses["site-location"].Value)
}

func TestSnapshotStore_ListHistoryIsolatesPrefixedTemplateIDs(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// "site" shares a key prefix with "site-extended".
	_, err := store.AppendHistory(ctx, "user-1", snapshotAt("site", base, "short"))
	require.NoError(t, err)
	_, err = store.AppendHistory(ctx, "user-1", snapshotAt("site-extended", base, "long one"))
	require.NoError(t, err)
	_, err = store.AppendHistory(ctx, "user-1", snapshotAt("site-extended", base.Add(time.Hour), "long two"))
	require.NoError(t, err)
	require.NoError(t, store.PutLive(ctx, "user-1", snapshotAt("site-extended", base, "long live")))

	snapshots, err := store.ListHistory(ctx, "user-1", "site")
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "site", snapshots[0].TemplateID)
	assert.Equal(t, "short", snapshots[0].Responses["site-location"].Value)

	extended, err := store.ListHistory(ctx, "user-1", "site-extended")
	require.NoError(t, err)
	assert.Len(t, extended, 2)
}

func TestSnapshotStore_GetHistory(t *testing.T) {
	ctx := context.Background()
	store, backend := newTestStore(t)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	key, err := store.AppendHistory(ctx, "user-1", snapshotAt("t", base, "saved"))
	require.NoError(t, err)

	snap, err := store.GetHistory(ctx, "user-1", key)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, key, snap.Key)
	assert.Equal(t, "saved", snap.Responses["site-location"].Value)

	// Absent and corrupt entries both come back nil without an error.
	snap, err = store.GetHistory(ctx, "user-1", HistoryKey("t", base.Add(time.Hour)))
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, backend.Set(ctx, "user-1", "checklist-t-broken", "{corrupt"))
	snap, err = store.GetHistory(ctx, "user-1", "checklist-t-broken")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotStore_HistoryEntriesAreImmutableCopies(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	snap := snapshotAt("t", base, "original")
	key, err := store.AppendHistory(ctx, "user-1", snap)
	require.NoError(t, err)

	// Mutating the caller's snapshot after the append must not affect the
	// stored entry.
	snap.Responses["site-location"].Value = "mutated"

	stored, err := store.GetHistory(ctx, "user-1", key)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Responses["site-location"].Value)
}
