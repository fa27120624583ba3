// Package kv defines the durable key-value side-channel the snapshot
// store is built on, plus the typed key builder that replaces ad-hoc
// string keys at call sites.
package kv

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store is the minimal durable key-value contract. Entries are scoped to
// a user; Get reports presence explicitly so an absent key is
// distinguishable from an empty value.
type Store interface {
	Get(ctx context.Context, userID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, userID, key, value string) error
	// List returns all entries whose key starts with prefix.
	List(ctx context.Context, userID, prefix string) (map[string]string, error)
}

// LiveKey returns the key holding the live response store for a template:
// checklist-<templateID>-responses.
func LiveKey(templateID string) string {
	return fmt.Sprintf("checklist-%s-responses", templateID)
}

// HistoryKey returns the key for an immutable history entry:
// checklist-<templateID>-<isoTimestamp>.
func HistoryKey(templateID string, at time.Time) string {
	return fmt.Sprintf("checklist-%s-%s", templateID, at.UTC().Format(time.RFC3339Nano))
}

// TemplatePrefix returns the common prefix of all keys for a template.
func TemplatePrefix(templateID string) string {
	return fmt.Sprintf("checklist-%s-", templateID)
}

// IsHistoryKey reports whether a key under TemplatePrefix addresses a
// history entry rather than the live store.
func IsHistoryKey(key, templateID string) bool {
	return strings.HasPrefix(key, TemplatePrefix(templateID)) && key != LiveKey(templateID)
}
