package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp moves the test into a fresh directory, optionally seeded with a
// config.yaml, so Load() does not pick up a developer's local file.
func chdirTemp(t *testing.T, yamlContent string) {
	t.Helper()

	tmpDir := t.TempDir()
	if yamlContent != "" {
		if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalDir)
	})
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	chdirTemp(t, `
port: "3443"
env: "test"
database:
  host: "db.example.com"
  port: 5432
  user: "testuser"
  database: "testdb"
oracle:
  provider: "openai"
  model: "gpt-4o-mini"
catalog:
  language: "en-US"
auth:
  enable_verification: false
`)

	os.Unsetenv("PGHOST")
	os.Unsetenv("ORACLE_BASE_URL")
	t.Setenv("PORT", "4443")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("TMDB_API_KEY", "tmdb-secret")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "4443" {
		t.Errorf("expected Port=4443 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host=db.example.com (from yaml), got %s", cfg.Database.Host)
	}
	if cfg.Catalog.Language != "en-US" {
		t.Errorf("expected Catalog.Language=en-US (from yaml), got %s", cfg.Catalog.Language)
	}
	if cfg.Oracle.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default OpenAI base URL, got %s", cfg.Oracle.BaseURL)
	}
	if cfg.Catalog.APIKey != "tmdb-secret" {
		t.Errorf("expected Catalog.APIKey from env")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdirTemp(t, "")

	t.Setenv("TMDB_API_KEY", "tmdb-secret")
	t.Setenv("AUTH_ENABLE_VERIFICATION", "false")

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Oracle.Provider != ProviderGemini {
		t.Errorf("expected default provider gemini, got %s", cfg.Oracle.Provider)
	}
	if cfg.Catalog.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("unexpected catalog base URL %s", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.Timeout != 5*time.Second {
		t.Errorf("expected catalog timeout 5s, got %s", cfg.Catalog.Timeout)
	}
	if cfg.Recommendations.ResultCount != 5 {
		t.Errorf("expected result count 5, got %d", cfg.Recommendations.ResultCount)
	}
	if cfg.Recommendations.MaxKeywords != 10 {
		t.Errorf("expected max keywords 10, got %d", cfg.Recommendations.MaxKeywords)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Oracle:          OracleConfig{Provider: ProviderGemini, Model: "gemini-2.5-flash"},
			Catalog:         CatalogConfig{APIKey: "k"},
			Recommendations: RecommendationsConfig{ResultCount: 5, MaxKeywords: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.Oracle.Provider = "llama" }, true},
		{"missing model", func(c *Config) { c.Oracle.Model = "" }, true},
		{"missing catalog key", func(c *Config) { c.Catalog.APIKey = "" }, true},
		{"zero result count", func(c *Config) { c.Recommendations.ResultCount = 0 }, true},
		{"zero max keywords", func(c *Config) { c.Recommendations.MaxKeywords = 0 }, true},
		{"verification without jwks", func(c *Config) { c.Auth.EnableVerification = true }, true},
		{"verification with jwks", func(c *Config) {
			c.Auth.EnableVerification = true
			c.Auth.JWKSEndpoints = map[string]string{"accounts": "https://accounts.example.com/.well-known/jwks.json"}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseJWKSEndpoints(t *testing.T) {
	got := parseJWKSEndpoints("a=https://a/jwks, b = https://b/jwks,bogus")
	if len(got) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(got))
	}
	if got["b"] != "https://b/jwks" {
		t.Errorf("expected trimmed entry for b, got %q", got["b"])
	}
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5433, Database: "d", SSLMode: "disable"}
	want := "postgres://u:p@h:5433/d?sslmode=disable"
	if got := c.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
