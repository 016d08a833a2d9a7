package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Supported oracle providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration for cinemind.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Auth            AuthConfig            `yaml:"auth"`
	Database        DatabaseConfig        `yaml:"database"`
	Redis           RedisConfig           `yaml:"redis"`
	Oracle          OracleConfig          `yaml:"oracle"`
	Catalog         CatalogConfig         `yaml:"catalog"`
	Recommendations RecommendationsConfig `yaml:"recommendations"`
}

// AuthConfig holds token verification settings. Tokens are issued by the
// accounts service; this service only verifies them.
type AuthConfig struct {
	// EnableVerification controls whether JWT signatures are verified.
	// Set to false for local development without the accounts service.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:""`

	// JWKSEndpoints is the parsed map from JWKSEndpointsStr (not from config file).
	JWKSEndpoints map[string]string `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"cinemind"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"cinemind"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds the optional shared keyword cache. An empty host disables it.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// OracleConfig selects and tunes the language-model provider.
type OracleConfig struct {
	Provider    string        `yaml:"provider" env:"ORACLE_PROVIDER" env-default:"gemini"`
	Model       string        `yaml:"model" env:"ORACLE_MODEL" env-default:"gemini-2.5-flash"`
	BaseURL     string        `yaml:"base_url" env:"ORACLE_BASE_URL" env-default:""` // openai-compatible endpoints only
	APIKey      string        `yaml:"-" env:"ORACLE_API_KEY"`
	Timeout     time.Duration `yaml:"timeout" env:"ORACLE_TIMEOUT" env-default:"8s"`
	Temperature float64       `yaml:"temperature" env:"ORACLE_TEMPERATURE" env-default:"0.7"`
	MaxTokens   int           `yaml:"max_tokens" env:"ORACLE_MAX_TOKENS" env-default:"1024"`

	// Circuit breaker around the provider.
	BreakerThreshold  int           `yaml:"breaker_threshold" env:"ORACLE_BREAKER_THRESHOLD" env-default:"5"`
	BreakerResetAfter time.Duration `yaml:"breaker_reset_after" env:"ORACLE_BREAKER_RESET_AFTER" env-default:"30s"`
}

// CatalogConfig configures the TMDb client.
type CatalogConfig struct {
	BaseURL        string        `yaml:"base_url" env:"TMDB_BASE_URL" env-default:"https://api.themoviedb.org/3"`
	ImageBaseURL   string        `yaml:"image_base_url" env:"TMDB_IMAGE_BASE_URL" env-default:"https://image.tmdb.org/t/p/w500"`
	APIKey         string        `yaml:"-" env:"TMDB_API_KEY"`
	Language       string        `yaml:"language" env:"TMDB_LANGUAGE" env-default:"pt-BR"`
	PlaceholderURL string        `yaml:"placeholder_url" env:"TMDB_PLACEHOLDER_URL" env-default:"https://via.placeholder.com/500x750.png?text=No+Image"`
	Timeout        time.Duration `yaml:"timeout" env:"TMDB_TIMEOUT" env-default:"5s"`

	// TMDb allows roughly 50 requests per second per IP.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"TMDB_REQUESTS_PER_SECOND" env-default:"40"`
	Burst             int     `yaml:"burst" env:"TMDB_BURST" env-default:"20"`

	BreakerFailureRatio float64       `yaml:"breaker_failure_ratio" env:"TMDB_BREAKER_FAILURE_RATIO" env-default:"0.6"`
	BreakerMinRequests  uint32        `yaml:"breaker_min_requests" env:"TMDB_BREAKER_MIN_REQUESTS" env-default:"10"`
	BreakerTimeout      time.Duration `yaml:"breaker_timeout" env:"TMDB_BREAKER_TIMEOUT" env-default:"30s"`
}

// RecommendationsConfig holds pipeline limits.
type RecommendationsConfig struct {
	ResultCount     int           `yaml:"result_count" env:"RECOMMENDATIONS_RESULT_COUNT" env-default:"5"`
	MaxKeywords     int           `yaml:"max_keywords" env:"RECOMMENDATIONS_MAX_KEYWORDS" env-default:"10"`
	KeywordCacheTTL time.Duration `yaml:"keyword_cache_ttl" env:"RECOMMENDATIONS_KEYWORD_CACHE_TTL" env-default:"24h"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// A missing config.yaml is not an error; defaults and environment apply.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// Fall back to environment only when the file is absent.
		if envErr := cleanenv.ReadEnv(cfg); envErr != nil {
			return nil, fmt.Errorf("failed to read configuration: %w", envErr)
		}
	}

	cfg.Auth.JWKSEndpoints = parseJWKSEndpoints(cfg.Auth.JWKSEndpointsStr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	switch c.Oracle.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}
	if c.Oracle.Model == "" {
		return fmt.Errorf("oracle model is required")
	}
	if c.Oracle.Provider == ProviderOpenAI && c.Oracle.BaseURL == "" {
		c.Oracle.BaseURL = "https://api.openai.com/v1"
	}
	if c.Catalog.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if c.Recommendations.ResultCount < 1 {
		return fmt.Errorf("recommendations result_count must be positive")
	}
	if c.Recommendations.MaxKeywords < 1 {
		return fmt.Errorf("recommendations max_keywords must be positive")
	}
	if c.Auth.EnableVerification && len(c.Auth.JWKSEndpoints) == 0 {
		return fmt.Errorf("jwks_endpoints is required when auth verification is enabled")
	}
	return nil
}

// parseJWKSEndpoints parses the JWKS endpoints string into a map.
// Format: "issuer1=url1,issuer2=url2"
func parseJWKSEndpoints(value string) map[string]string {
	endpoints := make(map[string]string)
	if value == "" {
		return endpoints
	}

	pairs := strings.Split(value, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 {
			endpoints[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return endpoints
}

// ConnectionString returns a PostgreSQL connection URL.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, resolveHost(c.Host, runningInContainer()), c.Port, c.Database, c.SSLMode,
	)
}

// Addr returns the Redis host:port, or "" when Redis is disabled.
func (c *RedisConfig) Addr() string {
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", resolveHost(c.Host, runningInContainer()), c.Port)
}

// Addr returns the host:port to listen on.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}
