package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"safesite-backend/application/ports"
	"safesite-backend/domain/checklist"
	"safesite-backend/infrastructure/persistence/kv"
	"safesite-backend/infrastructure/persistence/memory"
	pkgerrors "safesite-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureBus records every published notification, in order.
type captureBus struct {
	events []ports.Notification
}

func (b *captureBus) Subscribe(ports.NotificationHandler) func() { return func() {} }
func (b *captureBus) Publish(n ports.Notification)               { b.events = append(b.events, n) }

func (b *captureBus) byLevel(level ports.NotificationLevel) []ports.Notification {
	var out []ports.Notification
	for _, e := range b.events {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// MockBlobStore mocks the blueprint storage collaborator.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, file ports.BlueprintFile, templateID, itemID, ownerID string) (checklist.BlueprintUpload, error) {
	args := m.Called(ctx, file, templateID, itemID, ownerID)
	return args.Get(0).(checklist.BlueprintUpload), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, blueprintID, fileName string) error {
	args := m.Called(ctx, blueprintID, fileName)
	return args.Error(0)
}

// failingSnapshotStore wraps a working store but refuses live writes.
type failingSnapshotStore struct {
	ports.SnapshotStore
}

func (f *failingSnapshotStore) PutLive(context.Context, string, *checklist.Snapshot) error {
	return errors.New("durable store unavailable")
}

func newTestChecklistService(t *testing.T) (*ChecklistService, *captureBus, ports.SnapshotStore, *MockBlobStore) {
	t.Helper()
	snapshots := kv.NewSnapshotStore(memory.NewKVStore(), zap.NewNop())
	bus := &captureBus{}
	blobs := new(MockBlobStore)
	svc := NewChecklistService(checklist.BuiltinCatalog(), snapshots, blobs, bus, zap.NewNop())
	return svc, bus, snapshots, blobs
}

func bp(name string) ports.BlueprintFile {
	return ports.BlueprintFile{
		Name:        name,
		Size:        4,
		ContentType: "application/pdf",
		Reader:      strings.NewReader("data"),
	}
}

func TestChecklistService_UnknownTemplate(t *testing.T) {
	svc, _, _, _ := newTestChecklistService(t)

	err := svc.SetValue(context.Background(), "user-1", "no-such-template", "a", "v")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestChecklistService_MutationMirrorsFullStore(t *testing.T) {
	ctx := context.Background()
	svc, _, snapshots, _ := newTestChecklistService(t)

	require.NoError(t, svc.SetValue(ctx, "user-1", "general-site-safety", "site-location", "North gate"))
	require.NoError(t, svc.SetNotes(ctx, "user-1", "general-site-safety", "site-location", "temporary entrance"))

	live, err := snapshots.GetLive(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, "North gate", live.Responses["site-location"].Value)
	assert.Equal(t, "temporary entrance", live.Responses["site-location"].Notes)
}

func TestChecklistService_RehydratesFromLiveSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := kv.NewSnapshotStore(memory.NewKVStore(), zap.NewNop())

	// A previous session persisted state.
	seed := checklist.NewStore("general-site-safety")
	seed.SetValue("site-location", "persisted earlier")
	require.NoError(t, snapshots.PutLive(ctx, "user-1", checklist.TakeSnapshot(seed, time.Now())))

	svc := NewChecklistService(checklist.BuiltinCatalog(), snapshots, new(MockBlobStore), &captureBus{}, zap.NewNop())

	_, snap, _, err := svc.State(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Equal(t, "persisted earlier", snap.Responses["site-location"].Value)
}

func TestChecklistService_PersistFailureIsWarningNotError(t *testing.T) {
	ctx := context.Background()
	snapshots := &failingSnapshotStore{SnapshotStore: kv.NewSnapshotStore(memory.NewKVStore(), zap.NewNop())}
	bus := &captureBus{}
	svc := NewChecklistService(checklist.BuiltinCatalog(), snapshots, new(MockBlobStore), bus, zap.NewNop())

	// The mutation itself succeeds even though mirroring fails.
	require.NoError(t, svc.SetValue(ctx, "user-1", "general-site-safety", "site-location", "North gate"))

	warnings := bus.byLevel(ports.LevelWarning)
	require.Len(t, warnings, 1)
	assert.Empty(t, bus.byLevel(ports.LevelError))

	// The in-memory state survived.
	_, snap, _, err := svc.State(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Equal(t, "North gate", snap.Responses["site-location"].Value)
}

func TestChecklistService_AddImagesFailurePublishesOneError(t *testing.T) {
	ctx := context.Background()
	svc, bus, _, _ := newTestChecklistService(t)

	err := svc.AddImages(ctx, "user-1", "general-site-safety", "access-routes", []checklist.MediaFile{
		{Name: "bad.png", ContentType: "image/png", Reader: failingReader{}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMediaEncoding(err))
	assert.Len(t, bus.byLevel(ports.LevelError), 1)
}

func TestChecklistService_AddBlueprints_RequiresOwner(t *testing.T) {
	svc, bus, _, blobs := newTestChecklistService(t)

	_, err := svc.AddBlueprints(context.Background(), "", "general-site-safety", "access-routes", []ports.BlueprintFile{bp("plan.pdf")})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsAuthRequired(err))
	assert.Len(t, bus.byLevel(ports.LevelError), 1)
	blobs.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChecklistService_AddBlueprints_MergesAllOnSuccess(t *testing.T) {
	ctx := context.Background()
	svc, _, snapshots, blobs := newTestChecklistService(t)

	blobs.On("Upload", mock.Anything, mock.Anything, "general-site-safety", "access-routes", "user-1").
		Return(checklist.BlueprintUpload{ID: "bp-1", FileName: "p1", Status: checklist.AnalysisPending}, nil).Once()
	blobs.On("Upload", mock.Anything, mock.Anything, "general-site-safety", "access-routes", "user-1").
		Return(checklist.BlueprintUpload{ID: "bp-2", FileName: "p2", Status: checklist.AnalysisPending}, nil).Once()

	records, err := svc.AddBlueprints(ctx, "user-1", "general-site-safety", "access-routes", []ports.BlueprintFile{bp("a.pdf"), bp("b.pdf")})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	live, err := snapshots.GetLive(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Len(t, live.Responses["access-routes"].Blueprints, 2)
	blobs.AssertExpectations(t)
}

func TestChecklistService_AddBlueprints_OneFailureMergesNothing(t *testing.T) {
	ctx := context.Background()
	svc, bus, snapshots, blobs := newTestChecklistService(t)

	blobs.On("Upload", mock.Anything, mock.MatchedBy(func(f ports.BlueprintFile) bool { return f.Name == "good.pdf" }), mock.Anything, mock.Anything, mock.Anything).
		Return(checklist.BlueprintUpload{ID: "bp-ok", FileName: "p"}, nil).Maybe()
	blobs.On("Upload", mock.Anything, mock.MatchedBy(func(f ports.BlueprintFile) bool { return f.Name == "bad.pdf" }), mock.Anything, mock.Anything, mock.Anything).
		Return(checklist.BlueprintUpload{}, errors.New("storage rejected file")).Once()

	records, err := svc.AddBlueprints(ctx, "user-1", "general-site-safety", "access-routes", []ports.BlueprintFile{bp("good.pdf"), bp("bad.pdf")})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsBlueprintUpload(err))
	assert.Nil(t, records)
	assert.Len(t, bus.byLevel(ports.LevelError), 1)

	// Zero partial merge: the item has no blueprint records at all.
	_, snap, _, err := svc.State(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	if r := snap.Responses["access-routes"]; r != nil {
		assert.Empty(t, r.Blueprints)
	}

	live, err := snapshots.GetLive(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	if live != nil {
		if r := live.Responses["access-routes"]; r != nil {
			assert.Empty(t, r.Blueprints)
		}
	}
}

func TestChecklistService_RemoveBlueprint_FailClosed(t *testing.T) {
	ctx := context.Background()
	svc, bus, _, blobs := newTestChecklistService(t)

	blobs.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(checklist.BlueprintUpload{ID: "bp-1", FileName: "u/t/i/bp-1/plan.pdf"}, nil).Once()
	_, err := svc.AddBlueprints(ctx, "user-1", "general-site-safety", "access-routes", []ports.BlueprintFile{bp("plan.pdf")})
	require.NoError(t, err)

	// Remote deletion fails: the record must survive.
	blobs.On("Delete", mock.Anything, "bp-1", "u/t/i/bp-1/plan.pdf").
		Return(errors.New("storage unavailable")).Once()

	err = svc.RemoveBlueprint(ctx, "user-1", "general-site-safety", "bp-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsBlueprintUpload(err))
	assert.Len(t, bus.byLevel(ports.LevelError), 1)

	_, snap, _, err := svc.State(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Len(t, snap.Responses["access-routes"].Blueprints, 1)

	// Second attempt succeeds and the record goes away.
	blobs.On("Delete", mock.Anything, "bp-1", "u/t/i/bp-1/plan.pdf").Return(nil).Once()
	require.NoError(t, svc.RemoveBlueprint(ctx, "user-1", "general-site-safety", "bp-1"))

	_, snap, _, err = svc.State(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Empty(t, snap.Responses["access-routes"].Blueprints)
}

func TestChecklistService_RemoveBlueprint_UnknownIDIsNoOp(t *testing.T) {
	svc, _, _, blobs := newTestChecklistService(t)

	require.NoError(t, svc.RemoveBlueprint(context.Background(), "user-1", "general-site-safety", "bp-404"))
	blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestChecklistService_SaveHistoryRestore(t *testing.T) {
	ctx := context.Background()
	svc, bus, snapshots, _ := newTestChecklistService(t)

	require.NoError(t, svc.SetValue(ctx, "user-1", "general-site-safety", "site-location", "version one"))
	key1, err := svc.Save(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Len(t, bus.byLevel(ports.LevelInfo), 1)

	require.NoError(t, svc.SetValue(ctx, "user-1", "general-site-safety", "site-location", "version two"))
	_, err = svc.Save(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)

	history, err := svc.History(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "version two", history[0].Responses["site-location"].Value, "newest first")

	// Restore the older snapshot; the live store changes but nothing is
	// persisted until an explicit save.
	require.NoError(t, svc.Restore(ctx, "user-1", "general-site-safety", key1))

	_, snap, _, err := svc.State(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Equal(t, "version one", snap.Responses["site-location"].Value)

	live, err := snapshots.GetLive(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Equal(t, "version two", live.Responses["site-location"].Value,
		"restore must not write to the durable store")

	// The history itself is untouched by the restore.
	history, err = svc.History(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "version two", history[0].Responses["site-location"].Value)
	assert.Equal(t, "version one", history[1].Responses["site-location"].Value)
}

func TestChecklistService_RestoreRejectsWrongTemplate(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestChecklistService(t)

	require.NoError(t, svc.SetValue(ctx, "user-1", "scaffolding-inspection", "base-plates", "Yes"))
	key, err := svc.Save(ctx, "user-1", "scaffolding-inspection")
	require.NoError(t, err)

	err = svc.Restore(ctx, "user-1", "general-site-safety", key)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestChecklistService_ProgressMetrics(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestChecklistService(t)

	item, pred, err := svc.Progress(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Equal(t, 0, item)
	assert.Equal(t, 0, pred)

	tmpl, _ := svc.Catalog().Get("general-site-safety")
	for _, sec := range tmpl.Sections {
		for _, it := range sec.Items {
			require.NoError(t, svc.SetValue(ctx, "user-1", tmpl.ID, it.ID, "answered"))
		}
	}

	item, pred, err = svc.Progress(ctx, "user-1", "general-site-safety")
	require.NoError(t, err)
	assert.Equal(t, 100, item)
	assert.Equal(t, 100, pred)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }
