package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Supabase configuration
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseKVTable        string
	SupabaseResponsesTable string
	SupabaseBucket         string

	// Generative AI configuration
	GenAIAPIKey string
	GenAIModel  string

	// Template catalog
	TemplateCatalogPath string
	DynamicConfigPath   string

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool

	// Tracing
	TracingEndpoint string

	// Media capabilities advertised to clients
	CameraEnabled    bool
	ClipboardEnabled bool
	ShareEnabled     bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseKVTable:        getEnv("SUPABASE_KV_TABLE", "checklist_kv"),
		SupabaseResponsesTable: getEnv("SUPABASE_RESPONSES_TABLE", "checklist_responses"),
		SupabaseBucket:         getEnv("SUPABASE_BUCKET", "blueprints"),

		GenAIAPIKey: getEnv("GENAI_API_KEY", ""),
		GenAIModel:  getEnv("GENAI_MODEL", ""),

		TemplateCatalogPath: getEnv("TEMPLATE_CATALOG_PATH", ""),
		DynamicConfigPath:   getEnv("DYNAMIC_CONFIG_PATH", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4317"),

		CameraEnabled:    getEnvBool("CAPABILITY_CAMERA", true),
		ClipboardEnabled: getEnvBool("CAPABILITY_CLIPBOARD", true),
		ShareEnabled:     getEnvBool("CAPABILITY_SHARE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required in production")
		}
		if c.SupabaseServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required in production")
		}
		if c.GenAIAPIKey == "" {
			return fmt.Errorf("GENAI_API_KEY is required in production")
		}
	}
	return nil
}

// UseSupabase reports whether the hosted backend is configured; without
// it the in-memory stores are used.
func (c *Config) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceRoleKey != ""
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
