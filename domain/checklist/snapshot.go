package checklist

import (
	"encoding/json"
	"time"
)

// Snapshot is an immutable, timestamped copy of an entire response store.
// History snapshots are never modified once written; the live snapshot is
// overwritten on every mutation (last write wins, no merge).
type Snapshot struct {
	Key        string               `json:"key,omitempty"`
	TemplateID string               `json:"templateId"`
	CreatedAt  time.Time            `json:"createdAt"`
	Responses  map[string]*Response `json:"responses"`
}

// TakeSnapshot captures the current state of a store.
func TakeSnapshot(s *Store, at time.Time) *Snapshot {
	return &Snapshot{
		TemplateID: s.TemplateID(),
		CreatedAt:  at,
		Responses:  s.Responses(),
	}
}

// Restore replaces the entire live store with the snapshot's responses.
// It does not persist anything; a subsequent explicit save promotes the
// restored state.
func (sn *Snapshot) Restore(s *Store) {
	s.Replace(sn.Responses)
}

// Marshal serializes the snapshot for the durable side-channel.
func (sn *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(sn)
}

// UnmarshalSnapshot parses a serialized snapshot. Callers listing history
// treat a parse failure as a corrupt entry and skip it.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var sn Snapshot
	if err := json.Unmarshal(data, &sn); err != nil {
		return nil, err
	}
	if sn.Responses == nil {
		sn.Responses = make(map[string]*Response)
	}
	return &sn, nil
}
