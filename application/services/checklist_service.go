package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"safesite-backend/application/ports"
	"safesite-backend/domain/checklist"
	pkgerrors "safesite-backend/pkg/errors"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

// ChecklistService owns the live response stores. Each (user, template)
// pair gets one session; mutations are serialized per session and every
// mutation mirrors the full store to the durable side-channel.
type ChecklistService struct {
	catalog   *checklist.Catalog
	snapshots ports.SnapshotStore
	blobs     ports.BlobStore
	bus       ports.EventBus
	logger    *zap.Logger
	clock     func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*session
}

type sessionKey struct {
	userID     string
	templateID string
}

// session is the exclusive owner of one response store. Its mutex stands
// in for the single-threaded event loop of the original client.
type session struct {
	mu    sync.Mutex
	store *checklist.Store
}

// NewChecklistService creates the response lifecycle service.
func NewChecklistService(
	catalog *checklist.Catalog,
	snapshots ports.SnapshotStore,
	blobs ports.BlobStore,
	bus ports.EventBus,
	logger *zap.Logger,
) *ChecklistService {
	return &ChecklistService{
		catalog:   catalog,
		snapshots: snapshots,
		blobs:     blobs,
		bus:       bus,
		logger:    logger,
		clock:     time.Now,
		sessions:  make(map[sessionKey]*session),
	}
}

// WithClock overrides the service clock, for tests.
func (s *ChecklistService) WithClock(now func() time.Time) *ChecklistService {
	s.clock = now
	return s
}

// Catalog exposes the read-only template catalog.
func (s *ChecklistService) Catalog() *checklist.Catalog { return s.catalog }

// session returns the live session for a user's template, rehydrating it
// from the latest durable snapshot on first access.
func (s *ChecklistService) session(ctx context.Context, userID, templateID string) (*session, error) {
	if _, ok := s.catalog.Get(templateID); !ok {
		return nil, pkgerrors.NewNotFound(fmt.Sprintf("unknown template %q", templateID))
	}

	key := sessionKey{userID: userID, templateID: templateID}

	s.mu.Lock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{store: checklist.NewStoreWithClock(templateID, s.clock)}
		s.sessions[key] = sess
	}
	s.mu.Unlock()

	if ok {
		return sess, nil
	}

	// First access: rehydrate from the live durable snapshot if present.
	sess.mu.Lock()
	defer sess.mu.Unlock()
	live, err := s.snapshots.GetLive(ctx, userID, templateID)
	if err != nil {
		s.logger.Warn("failed to rehydrate checklist from durable store",
			zap.String("templateID", templateID),
			zap.Error(err))
		return sess, nil
	}
	if live != nil {
		live.Restore(sess.store)
	}
	return sess, nil
}

// mutate runs one mutation against the session store and mirrors the full
// store afterwards. A failed mutation leaves the store untouched and is
// surfaced as exactly one user notification.
func (s *ChecklistService) mutate(ctx context.Context, userID, templateID string, fn func(st *checklist.Store) error) error {
	sess, err := s.session(ctx, userID, templateID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess.store); err != nil {
		s.notify(ports.LevelError, err.Error())
		return err
	}

	s.persistLive(ctx, userID, sess.store)
	return nil
}

// persistLive mirrors the store to the durable side-channel. A failure
// here never corrupts or rolls back the in-memory mutation; it is
// downgraded to a warning notification.
func (s *ChecklistService) persistLive(ctx context.Context, userID string, store *checklist.Store) {
	snap := checklist.TakeSnapshot(store, s.clock())
	if err := s.snapshots.PutLive(ctx, userID, snap); err != nil {
		s.logger.Warn("failed to mirror checklist responses",
			zap.String("templateID", store.TemplateID()),
			zap.Error(err))
		s.notify(ports.LevelWarning, "Your responses could not be saved to durable storage")
	}
}

func (s *ChecklistService) notify(level ports.NotificationLevel, message string) {
	s.bus.Publish(ports.Notification{Level: level, Message: message, Time: s.clock()})
}

// SetValue records the answer for an item.
func (s *ChecklistService) SetValue(ctx context.Context, userID, templateID, itemID, value string) error {
	return s.mutate(ctx, userID, templateID, func(st *checklist.Store) error {
		st.SetValue(itemID, value)
		return nil
	})
}

// SetNotes records free-form notes for an item.
func (s *ChecklistService) SetNotes(ctx context.Context, userID, templateID, itemID, notes string) error {
	return s.mutate(ctx, userID, templateID, func(st *checklist.Store) error {
		st.SetNotes(itemID, notes)
		return nil
	})
}

// SetDeadline records a follow-up deadline for an item.
func (s *ChecklistService) SetDeadline(ctx context.Context, userID, templateID, itemID string, deadline time.Time) error {
	return s.mutate(ctx, userID, templateID, func(st *checklist.Store) error {
		st.SetDeadline(itemID, deadline)
		return nil
	})
}

// ToggleFlag inverts the importance marker for an item and returns the
// new value.
func (s *ChecklistService) ToggleFlag(ctx context.Context, userID, templateID, itemID string) (bool, error) {
	var flagged bool
	err := s.mutate(ctx, userID, templateID, func(st *checklist.Store) error {
		flagged = st.ToggleFlag(itemID)
		return nil
	})
	return flagged, err
}

// AddImages encodes and attaches a batch of images. The batch either
// fully applies or is rejected as a whole.
func (s *ChecklistService) AddImages(ctx context.Context, userID, templateID, itemID string, files []checklist.MediaFile) error {
	return s.mutate(ctx, userID, templateID, func(st *checklist.Store) error {
		return st.AddImages(itemID, files)
	})
}

// RemoveImage removes an attached image by position. Out-of-range
// indices are a defensive no-op.
func (s *ChecklistService) RemoveImage(ctx context.Context, userID, templateID, itemID string, index int) error {
	return s.mutate(ctx, userID, templateID, func(st *checklist.Store) error {
		st.RemoveImage(itemID, index)
		return nil
	})
}

// AddBlueprints uploads a batch of blueprint files and merges the
// returned records. Uploads are dispatched concurrently and all awaited;
// if any upload fails, no records are merged.
func (s *ChecklistService) AddBlueprints(ctx context.Context, userID, templateID, itemID string, files []ports.BlueprintFile) ([]checklist.BlueprintUpload, error) {
	if userID == "" {
		err := pkgerrors.NewAuthRequired("blueprint upload requires an authenticated owner")
		s.notify(ports.LevelError, "Sign in to upload blueprints")
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	records := make([]checklist.BlueprintUpload, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			rec, err := s.blobs.Upload(gctx, f, templateID, itemID, userID)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uploadErr := pkgerrors.NewBlueprintUpload("one or more blueprint uploads failed", err)
		s.notify(ports.LevelError, "Blueprint upload failed; no files were attached")
		s.logger.Error("blueprint upload batch failed",
			zap.String("templateID", templateID),
			zap.String("itemID", itemID),
			zap.Int("fileCount", len(files)),
			zap.Error(err))
		return nil, uploadErr
	}

	err := s.mutate(ctx, userID, templateID, func(st *checklist.Store) error {
		st.AppendBlueprints(itemID, records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// RemoveBlueprint deletes the remote blob first and only then drops the
// local record. If the remote deletion fails the record stays in place,
// so the user still sees the blueprint as present.
func (s *ChecklistService) RemoveBlueprint(ctx context.Context, userID, templateID, blueprintID string) error {
	sess, err := s.session(ctx, userID, templateID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	_, rec, ok := sess.store.FindBlueprint(blueprintID)
	if !ok {
		// Defensive no-op for unknown identifiers.
		return nil
	}

	if err := s.blobs.Delete(ctx, rec.ID, rec.FileName); err != nil {
		s.notify(ports.LevelError, "Blueprint could not be deleted from storage")
		return pkgerrors.NewBlueprintUpload("failed to delete blueprint from storage", err)
	}

	sess.store.RemoveBlueprintRecord(blueprintID)
	s.persistLive(ctx, userID, sess.store)
	return nil
}

// State returns the template, a point-in-time copy of the store, and the
// canonical completion percentage.
func (s *ChecklistService) State(ctx context.Context, userID, templateID string) (*checklist.Template, *checklist.Snapshot, int, error) {
	tmpl, _ := s.catalog.Get(templateID)
	sess, err := s.session(ctx, userID, templateID)
	if err != nil {
		return nil, nil, 0, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	snap := checklist.TakeSnapshot(sess.store, s.clock())
	return tmpl, snap, checklist.Progress(tmpl, sess.store), nil
}

// Progress returns both completion metrics for a user's template: the
// canonical item-based percentage and the predicate-based percentage used
// by structured variants.
func (s *ChecklistService) Progress(ctx context.Context, userID, templateID string) (itemBased, predicateBased int, err error) {
	tmpl, _ := s.catalog.Get(templateID)
	sess, err := s.session(ctx, userID, templateID)
	if err != nil {
		return 0, 0, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return checklist.Progress(tmpl, sess.store),
		checklist.PredicateProgress(checklist.StructuredPredicates(tmpl), sess.store),
		nil
}

// Save writes an immutable history snapshot and refreshes the live key.
// It returns the new history entry's key.
func (s *ChecklistService) Save(ctx context.Context, userID, templateID string) (string, error) {
	sess, err := s.session(ctx, userID, templateID)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := checklist.TakeSnapshot(sess.store, s.clock())
	key, err := s.snapshots.AppendHistory(ctx, userID, snap)
	if err != nil {
		s.notify(ports.LevelError, "Checklist could not be saved")
		return "", pkgerrors.Wrap(err, "failed to save checklist snapshot")
	}

	s.persistLive(ctx, userID, sess.store)
	s.notify(ports.LevelInfo, "Checklist saved")
	return key, nil
}

// History lists all saved snapshots for a user's template, newest first.
func (s *ChecklistService) History(ctx context.Context, userID, templateID string) ([]*checklist.Snapshot, error) {
	if _, ok := s.catalog.Get(templateID); !ok {
		return nil, pkgerrors.NewNotFound(fmt.Sprintf("unknown template %q", templateID))
	}
	return s.snapshots.ListHistory(ctx, userID, templateID)
}

// Restore replaces the live store with a saved history snapshot. Nothing
// is persisted; an explicit Save promotes the restored state.
func (s *ChecklistService) Restore(ctx context.Context, userID, templateID, key string) error {
	sess, err := s.session(ctx, userID, templateID)
	if err != nil {
		return err
	}

	snap, err := s.snapshots.GetHistory(ctx, userID, key)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to load snapshot")
	}
	if snap == nil || snap.TemplateID != templateID {
		return pkgerrors.NewNotFound(fmt.Sprintf("no snapshot %q for template %q", key, templateID))
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	snap.Restore(sess.store)
	return nil
}
