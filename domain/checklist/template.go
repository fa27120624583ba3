// Package checklist holds the core domain model for safety checklists:
// templates, responses, snapshots and the completion metrics over them.
package checklist

import (
	"fmt"

	pkgerrors "safesite-backend/pkg/errors"
)

// InputKind is the closed set of answer widgets an item can use.
type InputKind string

const (
	InputShortText    InputKind = "short-text"
	InputLongText     InputKind = "long-text"
	InputNumeric      InputKind = "numeric"
	InputSingleSelect InputKind = "single-select"
)

// Valid reports whether k is one of the defined input kinds.
func (k InputKind) Valid() bool {
	switch k {
	case InputShortText, InputLongText, InputNumeric, InputSingleSelect:
		return true
	}
	return false
}

// ItemFlags are the per-item affordances a template can enable.
type ItemFlags struct {
	Required         bool `json:"required" yaml:"required"`
	Critical         bool `json:"critical" yaml:"critical"`
	SupportsNotes    bool `json:"supportsNotes" yaml:"supportsNotes"`
	SupportsImages   bool `json:"supportsImages" yaml:"supportsImages"`
	SupportsFiles    bool `json:"supportsFiles" yaml:"supportsFiles"`
	SupportsDeadline bool `json:"supportsDeadline" yaml:"supportsDeadline"`
}

// Item is one question inside a section. Items are immutable once the
// template is loaded; construct them through the per-kind constructors so
// the options/kind pairing stays consistent.
type Item struct {
	ID       string    `json:"id" yaml:"id"`
	Question string    `json:"question" yaml:"question"`
	Kind     InputKind `json:"kind" yaml:"kind"`
	// Options is populated only for single-select items, in display order.
	Options []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Flags   ItemFlags `json:"flags" yaml:"flags"`
}

// NewShortTextItem creates a short free-text item.
func NewShortTextItem(id, question string, flags ItemFlags) Item {
	return Item{ID: id, Question: question, Kind: InputShortText, Flags: flags}
}

// NewLongTextItem creates a long free-text item.
func NewLongTextItem(id, question string, flags ItemFlags) Item {
	return Item{ID: id, Question: question, Kind: InputLongText, Flags: flags}
}

// NewNumericItem creates a numeric item.
func NewNumericItem(id, question string, flags ItemFlags) Item {
	return Item{ID: id, Question: question, Kind: InputNumeric, Flags: flags}
}

// NewSelectItem creates a single-select item with its ordered options.
func NewSelectItem(id, question string, options []string, flags ItemFlags) Item {
	return Item{ID: id, Question: question, Kind: InputSingleSelect, Options: options, Flags: flags}
}

// Section is an ordered group of items under one heading.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Items []Item `json:"items" yaml:"items"`
}

// Template is a named, ordered checklist definition. Templates are loaded
// once at startup and shared read-only by all sessions.
type Template struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// ItemCount returns the total number of items across all sections.
func (t *Template) ItemCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Items)
	}
	return n
}

// Item looks up an item by identifier.
func (t *Template) Item(itemID string) (Item, bool) {
	for _, s := range t.Sections {
		for _, it := range s.Items {
			if it.ID == itemID {
				return it, true
			}
		}
	}
	return Item{}, false
}

// Validate checks structural rules: non-empty identifiers, item IDs unique
// within the template, valid input kinds, and options present iff the item
// is single-select.
func (t *Template) Validate() error {
	if t.ID == "" {
		return pkgerrors.NewValidation("template id cannot be empty")
	}
	if t.Title == "" {
		return pkgerrors.NewValidation("template title cannot be empty")
	}

	seen := make(map[string]struct{})
	for _, s := range t.Sections {
		for _, it := range s.Items {
			if it.ID == "" {
				return pkgerrors.NewValidation(fmt.Sprintf("template %s: item with empty id in section %q", t.ID, s.Title))
			}
			if _, dup := seen[it.ID]; dup {
				return pkgerrors.NewValidation(fmt.Sprintf("template %s: duplicate item id %q", t.ID, it.ID))
			}
			seen[it.ID] = struct{}{}

			if !it.Kind.Valid() {
				return pkgerrors.NewValidation(fmt.Sprintf("template %s: item %s has unknown input kind %q", t.ID, it.ID, it.Kind))
			}
			if it.Kind == InputSingleSelect && len(it.Options) == 0 {
				return pkgerrors.NewValidation(fmt.Sprintf("template %s: select item %s has no options", t.ID, it.ID))
			}
			if it.Kind != InputSingleSelect && len(it.Options) > 0 {
				return pkgerrors.NewValidation(fmt.Sprintf("template %s: item %s has options but is not single-select", t.ID, it.ID))
			}
		}
	}
	return nil
}
