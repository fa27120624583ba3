package kv

import (
	"context"
	"sort"

	"safesite-backend/domain/checklist"
	pkgerrors "safesite-backend/pkg/errors"

	"go.uber.org/zap"
)

// SnapshotStore implements the typed snapshot interface on top of any
// key-value side-channel.
type SnapshotStore struct {
	store  Store
	logger *zap.Logger
}

// NewSnapshotStore creates a snapshot store over a key-value backend.
func NewSnapshotStore(store Store, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{store: store, logger: logger}
}

// GetLive returns the live snapshot, or nil when none exists. A corrupt
// live entry is treated as absent.
func (s *SnapshotStore) GetLive(ctx context.Context, userID, templateID string) (*checklist.Snapshot, error) {
	raw, ok, err := s.store.Get(ctx, userID, LiveKey(templateID))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read live snapshot")
	}
	if !ok {
		return nil, nil
	}

	snap, err := checklist.UnmarshalSnapshot([]byte(raw))
	if err != nil {
		s.logger.Warn("skipping corrupt live snapshot",
			zap.String("templateID", templateID),
			zap.Error(err))
		return nil, nil
	}
	return snap, nil
}

// PutLive overwrites the live snapshot. Last write wins; there is no
// merge or conflict detection.
func (s *SnapshotStore) PutLive(ctx context.Context, userID string, snapshot *checklist.Snapshot) error {
	data, err := snapshot.Marshal()
	if err != nil {
		return pkgerrors.NewInternal("failed to serialize snapshot", err)
	}
	if err := s.store.Set(ctx, userID, LiveKey(snapshot.TemplateID), string(data)); err != nil {
		return pkgerrors.Wrap(err, "failed to write live snapshot")
	}
	return nil
}

// AppendHistory writes a timestamp-addressed immutable history entry.
func (s *SnapshotStore) AppendHistory(ctx context.Context, userID string, snapshot *checklist.Snapshot) (string, error) {
	key := HistoryKey(snapshot.TemplateID, snapshot.CreatedAt)
	stamped := *snapshot
	stamped.Key = key

	data, err := stamped.Marshal()
	if err != nil {
		return "", pkgerrors.NewInternal("failed to serialize snapshot", err)
	}
	if err := s.store.Set(ctx, userID, key, string(data)); err != nil {
		return "", pkgerrors.Wrap(err, "failed to write history snapshot")
	}
	return key, nil
}

// ListHistory enumerates all history snapshots for a template, newest
// first. Malformed entries are skipped silently.
func (s *SnapshotStore) ListHistory(ctx context.Context, userID, templateID string) ([]*checklist.Snapshot, error) {
	entries, err := s.store.List(ctx, userID, TemplatePrefix(templateID))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list snapshots")
	}

	snapshots := make([]*checklist.Snapshot, 0, len(entries))
	for key, raw := range entries {
		if !IsHistoryKey(key, templateID) {
			continue
		}
		snap, err := checklist.UnmarshalSnapshot([]byte(raw))
		if err != nil {
			s.logger.Debug("skipping corrupt history snapshot", zap.String("key", key))
			continue
		}
		// The key prefix alone is ambiguous when one template ID is a
		// prefix of another; the decoded snapshot is authoritative.
		if snap.TemplateID != templateID {
			continue
		}
		if snap.Key == "" {
			snap.Key = key
		}
		snapshots = append(snapshots, snap)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// GetHistory returns one history snapshot by key, or nil when absent or
// corrupt.
func (s *SnapshotStore) GetHistory(ctx context.Context, userID, key string) (*checklist.Snapshot, error) {
	raw, ok, err := s.store.Get(ctx, userID, key)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read snapshot")
	}
	if !ok {
		return nil, nil
	}

	snap, err := checklist.UnmarshalSnapshot([]byte(raw))
	if err != nil {
		return nil, nil
	}
	if snap.Key == "" {
		snap.Key = key
	}
	return snap, nil
}
