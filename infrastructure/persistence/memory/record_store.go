package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"safesite-backend/application/ports"
	"safesite-backend/domain/checklist"
	"safesite-backend/domain/report"

	"github.com/google/uuid"
)

// RecordStore keeps submitted checklist records in memory, for local
// development and tests.
type RecordStore struct {
	mu      sync.RWMutex
	records []ports.ChecklistResponseRecord
	now     func() time.Time
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{now: time.Now}
}

// SaveChecklistResponse appends one submitted checklist record.
func (s *RecordStore) SaveChecklistResponse(_ context.Context, ownerID string, rec report.Record, responses map[string]*checklist.Response) (*ports.ChecklistResponseRecord, error) {
	stored := ports.ChecklistResponseRecord{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		TemplateID: rec.TemplateID,
		Title:      rec.Title,
		RiskLevel:  rec.RiskLevel,
		Report:     rec.Report,
		Responses:  responses,
		CreatedAt:  s.now().UTC().Format(time.RFC3339),
	}

	s.mu.Lock()
	s.records = append(s.records, stored)
	s.mu.Unlock()

	return &stored, nil
}

// ListChecklistResponses returns an owner's records, newest first. An
// empty templateID matches all templates.
func (s *RecordStore) ListChecklistResponses(_ context.Context, ownerID, templateID string) ([]ports.ChecklistResponseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ports.ChecklistResponseRecord
	for _, rec := range s.records {
		if rec.OwnerID != ownerID {
			continue
		}
		if templateID != "" && rec.TemplateID != templateID {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}
