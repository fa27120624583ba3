package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"safesite-backend/application/ports"
	"safesite-backend/domain/checklist"
	appErrors "safesite-backend/pkg/errors"

	"github.com/google/uuid"
)

// BlobStore is an in-process blueprint store for local development and
// tests. Contents are held in memory and lost on restart.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates an empty in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

// Upload reads the file fully and records it under a fresh blueprint ID.
func (s *BlobStore) Upload(_ context.Context, file ports.BlueprintFile, templateID, itemID, ownerID string) (checklist.BlueprintUpload, error) {
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		return checklist.BlueprintUpload{}, appErrors.NewBlueprintUpload("failed to read blueprint "+file.Name, err)
	}

	blueprintID := uuid.New().String()
	objPath := fmt.Sprintf("%s/%s/%s/%s/%s", ownerID, templateID, itemID, blueprintID, file.Name)

	s.mu.Lock()
	s.blobs[objPath] = data
	s.mu.Unlock()

	return checklist.BlueprintUpload{
		ID:         blueprintID,
		FileName:   objPath,
		FileSize:   int64(len(data)),
		StorageURL: "memory://" + objPath,
		Status:     checklist.AnalysisPending,
	}, nil
}

// Delete removes a stored blueprint. Deleting an unknown path is an error
// so callers keep their record when the remote copy cannot be confirmed
// gone.
func (s *BlobStore) Delete(_ context.Context, blueprintID, fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[fileName]; !ok {
		return appErrors.NewBlueprintUpload("blueprint not found: "+blueprintID, nil)
	}
	delete(s.blobs, fileName)
	return nil
}

// Get returns a stored blueprint's bytes, for tests.
func (s *BlobStore) Get(fileName string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[fileName]
	return data, ok
}
