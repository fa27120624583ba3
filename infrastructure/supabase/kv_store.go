package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
)

// KVStore implements the durable key-value side-channel on a Supabase
// table with (user_id, key) as its primary key.
type KVStore struct {
	client *supabase.Client
	table  string
}

// NewKVStore creates the table-backed key-value store.
func NewKVStore(client *supabase.Client, table string) *KVStore {
	return &KVStore{client: client, table: table}
}

type kvRow struct {
	UserID    string `json:"user_id"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Get returns the value for a key, reporting presence explicitly.
func (s *KVStore) Get(_ context.Context, userID, key string) (string, bool, error) {
	var rows []kvRow
	_, err := s.client.From(s.table).
		Select("user_id,key,value", "", false).
		Eq("user_id", userID).
		Eq("key", key).
		ExecuteTo(&rows)
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

// Set upserts a value; the previous value for the key is overwritten.
func (s *KVStore) Set(_ context.Context, userID, key, value string) error {
	row := kvRow{
		UserID:    userID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, _, err := s.client.From(s.table).
		Insert(row, true, "user_id,key", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// List returns all of a user's entries with the given key prefix.
func (s *KVStore) List(_ context.Context, userID, prefix string) (map[string]string, error) {
	var rows []kvRow
	_, err := s.client.From(s.table).
		Select("user_id,key,value", "", false).
		Eq("user_id", userID).
		Like("key", prefix+"%").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("kv list %q: %w", prefix, err)
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}
