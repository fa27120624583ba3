package supabase

import (
	"context"
	"fmt"
	"path"

	"safesite-backend/application/ports"
	"safesite-backend/domain/checklist"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// BlobStore uploads blueprint files to a Supabase storage bucket.
type BlobStore struct {
	client *supabase.Client
	bucket string
	logger *zap.Logger
}

// NewBlobStore creates the blueprint blob store.
func NewBlobStore(client *supabase.Client, bucket string, logger *zap.Logger) *BlobStore {
	return &BlobStore{client: client, bucket: bucket, logger: logger}
}

// objectPath buckets blueprints per blueprint id so file names cannot
// collide across uploads: <blueprintID>/<fileName>.
func objectPath(blueprintID, fileName string) string {
	return path.Join(blueprintID, fileName)
}

// Upload stores one blueprint file and returns its record with the
// public URL. Analysis starts as pending.
func (s *BlobStore) Upload(_ context.Context, file ports.BlueprintFile, templateID, itemID, ownerID string) (checklist.BlueprintUpload, error) {
	if ownerID == "" {
		return checklist.BlueprintUpload{}, fmt.Errorf("blueprint upload requires an owner")
	}

	blueprintID := uuid.New().String()
	objPath := path.Join(ownerID, templateID, itemID, objectPath(blueprintID, file.Name))

	if _, err := s.client.Storage.UploadFile(s.bucket, objPath, file.Reader); err != nil {
		return checklist.BlueprintUpload{}, fmt.Errorf("failed to upload %q: %w", file.Name, err)
	}

	url := s.client.Storage.GetPublicUrl(s.bucket, objPath).SignedURL
	s.logger.Debug("blueprint uploaded",
		zap.String("blueprintID", blueprintID),
		zap.String("path", objPath))

	return checklist.BlueprintUpload{
		ID:         blueprintID,
		FileName:   objPath,
		FileSize:   file.Size,
		StorageURL: url,
		Status:     checklist.AnalysisPending,
	}, nil
}

// Delete removes a blueprint blob. Callers remove the local record only
// after this succeeds.
func (s *BlobStore) Delete(_ context.Context, blueprintID, fileName string) error {
	if _, err := s.client.Storage.RemoveFile(s.bucket, []string{fileName}); err != nil {
		return fmt.Errorf("failed to delete blueprint %s: %w", blueprintID, err)
	}
	return nil
}
