package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"safesite-backend/application/ports"
	"safesite-backend/domain/checklist"
	"safesite-backend/domain/report"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// RecordStore persists submitted checklist reports to the relational
// backend, scoped to their owner.
type RecordStore struct {
	client *supabase.Client
	table  string
}

// NewRecordStore creates the checklist response record store.
func NewRecordStore(client *supabase.Client, table string) *RecordStore {
	return &RecordStore{client: client, table: table}
}

type responseRow struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	TemplateID string          `json:"template_id"`
	Title      string          `json:"title"`
	RiskLevel  string          `json:"risk_level"`
	Report     string          `json:"report"`
	Responses  json.RawMessage `json:"responses"`
	CreatedAt  string          `json:"created_at"`
}

// SaveChecklistResponse inserts one submitted checklist with its report.
func (s *RecordStore) SaveChecklistResponse(_ context.Context, ownerID string, rec report.Record, responses map[string]*checklist.Response) (*ports.ChecklistResponseRecord, error) {
	raw, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize responses: %w", err)
	}

	row := responseRow{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		TemplateID: rec.TemplateID,
		Title:      rec.Title,
		RiskLevel:  rec.RiskLevel,
		Report:     rec.Report,
		Responses:  raw,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	_, _, err = s.client.From(s.table).
		Insert(row, false, "", "minimal", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to save checklist response: %w", err)
	}

	return rowToRecord(row), nil
}

// ListChecklistResponses returns an owner's submitted checklists, newest
// first. An empty templateID lists all of the owner's templates.
func (s *RecordStore) ListChecklistResponses(_ context.Context, ownerID, templateID string) ([]ports.ChecklistResponseRecord, error) {
	query := s.client.From(s.table).
		Select("*", "", false).
		Eq("owner_id", ownerID)
	if templateID != "" {
		query = query.Eq("template_id", templateID)
	}

	var rows []responseRow
	_, err := query.
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist responses: %w", err)
	}

	out := make([]ports.ChecklistResponseRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, *rowToRecord(row))
	}
	return out, nil
}

func rowToRecord(row responseRow) *ports.ChecklistResponseRecord {
	rec := &ports.ChecklistResponseRecord{
		ID:         row.ID,
		OwnerID:    row.OwnerID,
		TemplateID: row.TemplateID,
		Title:      row.Title,
		RiskLevel:  row.RiskLevel,
		Report:     row.Report,
		CreatedAt:  row.CreatedAt,
	}
	if len(row.Responses) > 0 {
		// A malformed responses blob is tolerated; the report text is
		// the primary payload.
		_ = json.Unmarshal(row.Responses, &rec.Responses)
	}
	return rec
}
