package ports

import (
	"context"

	"safesite-backend/domain/checklist"
	"safesite-backend/domain/report"
)

// SnapshotStore is the typed interface over the durable key-value
// side-channel. The live snapshot is overwritten on every mutation;
// history entries are immutable once appended.
type SnapshotStore interface {
	// GetLive returns the live snapshot for a user's template, or nil
	// when none has been written yet.
	GetLive(ctx context.Context, userID, templateID string) (*checklist.Snapshot, error)
	// PutLive overwrites the live snapshot (last write wins, no merge).
	PutLive(ctx context.Context, userID string, snapshot *checklist.Snapshot) error
	// AppendHistory writes a new immutable history entry and returns its key.
	AppendHistory(ctx context.Context, userID string, snapshot *checklist.Snapshot) (string, error)
	// ListHistory returns history snapshots sorted newest-first. Malformed
	// entries are skipped, never surfaced as errors.
	ListHistory(ctx context.Context, userID, templateID string) ([]*checklist.Snapshot, error)
	// GetHistory returns one history snapshot by its key.
	GetHistory(ctx context.Context, userID, key string) (*checklist.Snapshot, error)
}

// ChecklistResponseRecord is the persisted row for a submitted checklist.
type ChecklistResponseRecord struct {
	ID         string                         `json:"id"`
	OwnerID    string                         `json:"owner_id"`
	TemplateID string                         `json:"template_id"`
	Title      string                         `json:"title"`
	RiskLevel  string                         `json:"risk_level"`
	Report     string                         `json:"report"`
	Responses  map[string]*checklist.Response `json:"responses"`
	CreatedAt  string                         `json:"created_at"`
}

// RecordStore is the durable record collaborator backing the relational
// persistence of submitted checklists.
type RecordStore interface {
	SaveChecklistResponse(ctx context.Context, ownerID string, rec report.Record, responses map[string]*checklist.Response) (*ChecklistResponseRecord, error)
	ListChecklistResponses(ctx context.Context, ownerID, templateID string) ([]ChecklistResponseRecord, error)
}
