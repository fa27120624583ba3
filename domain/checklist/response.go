package checklist

import (
	"encoding/base64"
	"fmt"
	"io"
	"time"

	pkgerrors "safesite-backend/pkg/errors"
)

// AnalysisStatus tracks the AI-analysis state of an uploaded blueprint.
type AnalysisStatus string

const (
	AnalysisPending   AnalysisStatus = "pending"
	AnalysisCompleted AnalysisStatus = "completed"
	AnalysisFailed    AnalysisStatus = "failed"
)

// BlueprintUpload is the record kept for one uploaded site document.
type BlueprintUpload struct {
	ID         string         `json:"id"`
	FileName   string         `json:"fileName"`
	FileSize   int64          `json:"fileSize"`
	StorageURL string         `json:"storageUrl"`
	Status     AnalysisStatus `json:"status"`
}

// Response is the mutable answer record attached to one item. A response
// exists only after the user has interacted with the item at least once;
// an absent key means "unanswered", which is distinct from an explicit
// empty value.
type Response struct {
	Value      string            `json:"value"`
	Timestamp  time.Time         `json:"timestamp"`
	Notes      string            `json:"notes,omitempty"`
	Images     []string          `json:"images,omitempty"`
	Blueprints []BlueprintUpload `json:"blueprints,omitempty"`
	Deadline   *time.Time        `json:"deadline,omitempty"`
	Flagged    bool              `json:"flagged"`
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	c := *r
	c.Images = append([]string(nil), r.Images...)
	c.Blueprints = append([]BlueprintUpload(nil), r.Blueprints...)
	if r.Deadline != nil {
		d := *r.Deadline
		c.Deadline = &d
	}
	return &c
}

// MediaFile is a binary input to be encoded into an image data URI.
type MediaFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Store holds the in-memory answer set for one template instance. It is
// owned by exactly one checklist session; callers serialize access.
type Store struct {
	templateID string
	responses  map[string]*Response
	now        func() time.Time
}

// NewStore creates an empty store for the given template.
func NewStore(templateID string) *Store {
	return &Store{
		templateID: templateID,
		responses:  make(map[string]*Response),
		now:        time.Now,
	}
}

// NewStoreWithClock creates a store with an injected clock, for tests.
func NewStoreWithClock(templateID string, now func() time.Time) *Store {
	s := NewStore(templateID)
	s.now = now
	return s
}

// TemplateID returns the template this store belongs to.
func (s *Store) TemplateID() string { return s.templateID }

// Response returns the response for an item, or nil when unanswered.
func (s *Store) Response(itemID string) *Response {
	return s.responses[itemID]
}

// Len returns the number of items that have been interacted with.
func (s *Store) Len() int { return len(s.responses) }

// Responses returns a deep copy of the full answer set.
func (s *Store) Responses() map[string]*Response {
	out := make(map[string]*Response, len(s.responses))
	for id, r := range s.responses {
		out[id] = r.Clone()
	}
	return out
}

// Replace swaps the entire answer set, e.g. when restoring a snapshot.
// The incoming map is deep-copied so the caller keeps ownership.
func (s *Store) Replace(responses map[string]*Response) {
	s.responses = make(map[string]*Response, len(responses))
	for id, r := range responses {
		s.responses[id] = r.Clone()
	}
}

// touch returns the response for itemID, creating it on first write, and
// refreshes its timestamp. Timestamps never move backwards even if the
// clock does.
func (s *Store) touch(itemID string) *Response {
	r, ok := s.responses[itemID]
	if !ok {
		r = &Response{}
		s.responses[itemID] = r
	}
	if now := s.now(); now.After(r.Timestamp) {
		r.Timestamp = now
	}
	return r
}

// SetValue records the answer for an item. Unknown item identifiers are
// tolerated and stored; template membership is not enforced here.
func (s *Store) SetValue(itemID, value string) {
	s.touch(itemID).Value = value
}

// SetNotes records free-form notes for an item.
func (s *Store) SetNotes(itemID, notes string) {
	s.touch(itemID).Notes = notes
}

// SetDeadline records a follow-up deadline for an item.
func (s *Store) SetDeadline(itemID string, deadline time.Time) {
	s.touch(itemID).Deadline = &deadline
}

// ToggleFlag inverts the importance marker for an item. An absent
// response is treated as unflagged, so the first toggle sets it.
func (s *Store) ToggleFlag(itemID string) bool {
	r := s.touch(itemID)
	r.Flagged = !r.Flagged
	return r.Flagged
}

// AddImages encodes a batch of files into data URIs and appends them to
// the item's response. The batch is all-or-nothing: if any file cannot be
// read, nothing is appended and a MediaEncodingError is returned.
func (s *Store) AddImages(itemID string, files []MediaFile) error {
	if len(files) == 0 {
		return nil
	}

	encoded := make([]string, 0, len(files))
	for _, f := range files {
		data, err := io.ReadAll(f.Reader)
		if err != nil {
			return pkgerrors.NewMediaEncoding(fmt.Sprintf("failed to read image %q", f.Name), err)
		}
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		encoded = append(encoded, fmt.Sprintf("data:%s;base64,%s", ct, base64.StdEncoding.EncodeToString(data)))
	}

	r := s.touch(itemID)
	r.Images = append(r.Images, encoded...)
	return nil
}

// RemoveImage removes an image by position. Out-of-range indices are a
// no-op; the timestamp is only refreshed when something was removed.
func (s *Store) RemoveImage(itemID string, index int) {
	r, ok := s.responses[itemID]
	if !ok || index < 0 || index >= len(r.Images) {
		return
	}
	r.Images = append(r.Images[:index], r.Images[index+1:]...)
	s.touch(itemID)
}

// AppendBlueprints merges uploaded blueprint records into the item's
// response. Callers perform the remote uploads first and only merge once
// every upload has succeeded.
func (s *Store) AppendBlueprints(itemID string, records []BlueprintUpload) {
	if len(records) == 0 {
		return
	}
	r := s.touch(itemID)
	r.Blueprints = append(r.Blueprints, records...)
}

// FindBlueprint locates a blueprint record by identifier.
func (s *Store) FindBlueprint(blueprintID string) (itemID string, record BlueprintUpload, ok bool) {
	for id, r := range s.responses {
		for _, b := range r.Blueprints {
			if b.ID == blueprintID {
				return id, b, true
			}
		}
	}
	return "", BlueprintUpload{}, false
}

// RemoveBlueprintRecord drops a blueprint record by identifier. Unknown
// identifiers are a no-op.
func (s *Store) RemoveBlueprintRecord(blueprintID string) {
	for itemID, r := range s.responses {
		for i, b := range r.Blueprints {
			if b.ID == blueprintID {
				r.Blueprints = append(r.Blueprints[:i], r.Blueprints[i+1:]...)
				s.touch(itemID)
				return
			}
		}
	}
}
