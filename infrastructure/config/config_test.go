package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.UseSupabase())
	assert.Equal(t, "checklist_kv", cfg.SupabaseKVTable)
	assert.Equal(t, "checklist_responses", cfg.SupabaseResponsesTable)
	assert.Equal(t, "blueprints", cfg.SupabaseBucket)
}

func TestLoadConfig_ProductionRequiresBackends(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-role-key")
	_, err = LoadConfig()
	require.Error(t, err, "the AI key is still missing")

	t.Setenv("GENAI_API_KEY", "genai-key")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.UseSupabase())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("ENABLE_METRICS", "false")
	t.Setenv("CAPABILITY_SHARE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ServerAddress)
	assert.False(t, cfg.EnableMetrics)
	assert.True(t, cfg.ShareEnabled)
}

func TestDefaultDynamicConfig_IsValid(t *testing.T) {
	cfg := DefaultDynamicConfig()
	assert.NoError(t, cfg.validate())
	assert.Positive(t, cfg.Limits.MaxImageBytes)
	assert.Positive(t, cfg.Limits.MaxFilesPerBatch)
}

func TestLoadDynamicConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.yaml")
	content := `limits:
  maxImageBytes: 1048576
  maxFilesPerBatch: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadDynamicConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), cfg.Limits.MaxImageBytes)
	assert.Equal(t, 2, cfg.Limits.MaxFilesPerBatch)
	// Untouched values keep their defaults.
	assert.Equal(t, 10, cfg.Limits.MaxImagesPerItem)
}

func TestLoadDynamicConfig_RejectsInvalidLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  maxImageBytes: -1\n"), 0o600))

	_, err := LoadDynamicConfig(path)
	assert.Error(t, err)
}

func TestWatcher_EmptyPathServesDefaults(t *testing.T) {
	w, err := NewWatcher("", zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, DefaultDynamicConfig(), w.Current())
}

func TestWatcher_LoadsInitialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  maxFilesPerBatch: 3\n"), 0o600))

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, 3, w.Current().Limits.MaxFilesPerBatch)
}

func TestWatcher_ReloadNotifiesSubscribers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynamic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  maxFilesPerBatch: 3\n"), 0o600))

	w, err := NewWatcher(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	var seen []*DynamicConfig
	w.OnChange(func(cfg *DynamicConfig) { seen = append(seen, cfg) })
	w.OnChange(func(cfg *DynamicConfig) { seen = append(seen, cfg) })

	require.NoError(t, os.WriteFile(path, []byte("limits:\n  maxFilesPerBatch: 7\n"), 0o600))
	w.reload()

	assert.Equal(t, 7, w.Current().Limits.MaxFilesPerBatch)
	require.Len(t, seen, 2, "every subscriber sees the reload")
	assert.Equal(t, 7, seen[0].Limits.MaxFilesPerBatch)

	// A bad rewrite keeps serving the last good configuration.
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  maxFilesPerBatch: -1\n"), 0o600))
	w.reload()
	assert.Equal(t, 7, w.Current().Limits.MaxFilesPerBatch)
}
