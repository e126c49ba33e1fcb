package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/datasource"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/retry"
)

// DefaultPath is the configuration file read by Load.
const DefaultPath = "config.yaml"

// Config holds all configuration for ekaya-nl2sql.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"5000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Paths     PathsConfig     `yaml:"paths"`

	// Database is the execution target for generated queries.
	Database DatabaseConfig `yaml:"database"`
}

// LLMConfig selects the completion provider and the model used by each
// pipeline stage.
type LLMConfig struct {
	Provider        string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	BaseURL         string `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	ExtractionModel string `yaml:"extraction_model" env:"LLM_EXTRACTION_MODEL" env-default:"gpt-4o-mini"`
	DefaultModel    string `yaml:"default_model" env:"LLM_DEFAULT_MODEL" env-default:"gpt-4o"`
	ReasoningModel  string `yaml:"reasoning_model" env:"LLM_REASONING_MODEL" env-default:"o4-mini"`
	InsightModel    string `yaml:"insight_model" env:"LLM_INSIGHT_MODEL" env-default:"gpt-4o-mini"`

	OpenAIAPIKey    string `yaml:"-" env:"OPENAI_API_KEY"`    // Secret - not in YAML
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
	GeminiAPIKey    string `yaml:"-" env:"GEMINI_API_KEY"`    // Secret - not in YAML

	Retry          RetryConfig          `yaml:"retry"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// RetryConfig controls retries of model calls. MaxRetries 0 disables the
// resilience wrapper entirely.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries" env:"LLM_RETRY_MAX_RETRIES" env-default:"0"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"LLM_RETRY_INITIAL_DELAY" env-default:"500ms"`
	MaxDelay     time.Duration `yaml:"max_delay" env:"LLM_RETRY_MAX_DELAY" env-default:"10s"`
	Multiplier   float64       `yaml:"multiplier" env:"LLM_RETRY_MULTIPLIER" env-default:"2"`
	JitterFactor float64       `yaml:"jitter_factor" env:"LLM_RETRY_JITTER_FACTOR" env-default:"0.1"`
}

// CircuitBreakerConfig controls the breaker wrapped around model calls.
type CircuitBreakerConfig struct {
	Threshold  int           `yaml:"threshold" env:"LLM_CIRCUIT_THRESHOLD" env-default:"5"`
	ResetAfter time.Duration `yaml:"reset_after" env:"LLM_CIRCUIT_RESET_AFTER" env-default:"30s"`
}

// EmbeddingConfig selects the embedding provider for example retrieval.
// The API key is shared with the completion provider of the same name.
type EmbeddingConfig struct {
	Provider string `yaml:"provider" env:"EMBEDDING_PROVIDER" env-default:"openai"`
	Model    string `yaml:"model" env:"EMBEDDING_MODEL" env-default:""`
	BaseURL  string `yaml:"base_url" env:"EMBEDDING_BASE_URL" env-default:""`
}

// RetrievalConfig sizes example retrieval.
type RetrievalConfig struct {
	TopK   int `yaml:"top_k" env:"RETRIEVAL_TOP_K" env-default:"3"`
	FetchK int `yaml:"fetch_k" env:"RETRIEVAL_FETCH_K" env-default:"20"`
}

// PathsConfig locates the schema description and the example index.
type PathsConfig struct {
	SchemaFile   string `yaml:"schema_file" env:"SCHEMA_FILE" env-default:"docs/schema.txt"`
	IndexPath    string `yaml:"index_path" env:"INDEX_PATH" env-default:"vector_store/examples.db"`
	ExamplesGlob string `yaml:"examples_glob" env:"EXAMPLES_GLOB" env-default:"docs/examples/validated/ex*.yaml"`
}

// DatabaseConfig holds the connection settings of the queried database.
type DatabaseConfig struct {
	Type         string `yaml:"type" env:"PGTYPE" env-default:"postgres"`
	Host         string `yaml:"host" env:"PGHOST" env-default:"127.0.0.1"`
	Port         int    `yaml:"port" env:"PGPORT" env-default:"5433"`
	User         string `yaml:"user" env:"PGUSER" env-default:"postgres"`
	Password     string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database     string `yaml:"database" env:"PGDATABASE" env-default:"health_data_db"`
	SSLMode      string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"PGMAX_CONNECTIONS" env-default:"10"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFile(DefaultPath, version)
}

// LoadFile reads configuration from path with environment variable overrides.
// Secrets (API keys, PGPASSWORD) must come from environment variables
// (yaml:"-" fields).
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks provider names and retrieval sizes.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGemini:
	default:
		return fmt.Errorf("unsupported llm.provider %q", c.LLM.Provider)
	}

	switch c.Embedding.Provider {
	case llm.ProviderOpenAI, llm.ProviderGemini:
	default:
		return fmt.Errorf("unsupported embedding.provider %q", c.Embedding.Provider)
	}

	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.FetchK < c.Retrieval.TopK {
		return fmt.Errorf("retrieval.fetch_k (%d) must be >= retrieval.top_k (%d)", c.Retrieval.FetchK, c.Retrieval.TopK)
	}

	switch c.Database.Type {
	case "postgres", "sqlserver":
	default:
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}

	if c.LLM.Retry.MaxRetries < 0 {
		return fmt.Errorf("llm.retry.max_retries must not be negative")
	}

	return nil
}

// APIKey returns the secret for the named provider.
func (c *LLMConfig) APIKey(provider string) string {
	switch provider {
	case llm.ProviderAnthropic:
		return c.AnthropicAPIKey
	case llm.ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// InvokerConfig returns the provider settings for completions.
func (c *Config) InvokerConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		Provider: c.LLM.Provider,
		BaseURL:  c.LLM.BaseURL,
		APIKey:   c.LLM.APIKey(c.LLM.Provider),
	}
}

// EmbedderConfig returns the provider settings for embeddings.
func (c *Config) EmbedderConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		Provider:       c.Embedding.Provider,
		BaseURL:        c.Embedding.BaseURL,
		APIKey:         c.LLM.APIKey(c.Embedding.Provider),
		EmbeddingModel: c.Embedding.Model,
	}
}

// RetryEnabled reports whether model calls go through the resilience wrapper.
func (c *LLMConfig) RetryEnabled() bool {
	return c.Retry.MaxRetries > 0
}

// RetryPolicy converts the retry section into a retry.Config.
func (c *LLMConfig) RetryPolicy() *retry.Config {
	return &retry.Config{
		MaxRetries:   c.Retry.MaxRetries,
		InitialDelay: c.Retry.InitialDelay,
		MaxDelay:     c.Retry.MaxDelay,
		Multiplier:   c.Retry.Multiplier,
		JitterFactor: c.Retry.JitterFactor,
	}
}

// BreakerConfig converts the circuit breaker section.
func (c *LLMConfig) BreakerConfig() llm.CircuitBreakerConfig {
	return llm.CircuitBreakerConfig{
		Threshold:  c.CircuitBreaker.Threshold,
		ResetAfter: c.CircuitBreaker.ResetAfter,
	}
}

// DatasourceConfig converts the database section for the executor.
func (c *DatabaseConfig) DatasourceConfig() *datasource.Config {
	return &datasource.Config{
		Type:         c.Type,
		Host:         c.Host,
		Port:         c.Port,
		User:         c.User,
		Password:     c.Password,
		Database:     c.Database,
		SSLMode:      c.SSLMode,
		MaxOpenConns: c.MaxOpenConns,
	}
}
