// Package supabase binds the external Supabase collaborators: bearer
// token validation, the key-value side-channel table, the submitted
// checklist records table, and blueprint blob storage.
package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// Config holds the connection settings for the hosted backend.
type Config struct {
	URL            string
	ServiceRoleKey string
	// KVTable is the key-value side-channel table. Columns: user_id,
	// key, value, updated_at; primary key (user_id, key).
	KVTable string
	// ResponsesTable stores submitted checklist reports.
	ResponsesTable string
	// Bucket is the storage bucket for blueprint uploads.
	Bucket string
}

// NewClient creates the shared Supabase client. The service role key is
// used because the backend validates user tokens itself.
func NewClient(cfg Config) (*supabase.Client, error) {
	client, err := supabase.NewClient(cfg.URL, cfg.ServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return client, nil
}
