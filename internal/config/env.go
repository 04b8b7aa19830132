package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by LoadFromEnv.
const EnvPrefix = "PGML"

// EnvConfig holds all environment-based configuration.
// Field names map to environment variables with the PGML_ prefix.
type EnvConfig struct {
	// DBURL is the database connection URL.
	// Env: PGML_DB_URL (default: postgres://postgres@localhost:5432/postgres)
	DBURL string `envconfig:"DB_URL" default:"postgres://postgres@localhost:5432/postgres"`

	// LogLevel is the log verbosity level.
	// Env: PGML_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: PGML_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// EmbedFunction is the database function that computes embeddings.
	// Env: PGML_EMBED_FUNCTION (default: pgml.embed)
	EmbedFunction string `envconfig:"EMBED_FUNCTION" default:"pgml.embed"`

	// Transformer names the embedding model.
	// Env: PGML_TRANSFORMER (default: intfloat/e5-small)
	Transformer string `envconfig:"TRANSFORMER" default:"intfloat/e5-small"`

	// Dimensions is the length of the embedding vector.
	// Env: PGML_DIMENSIONS (default: 384)
	Dimensions int `envconfig:"DIMENSIONS" default:"384"`

	// StoreParameters is a JSON object passed to the transformer on save.
	// Env: PGML_STORE_PARAMETERS
	StoreParameters string `envconfig:"STORE_PARAMETERS"`

	// RecallParameters is a JSON object passed to the transformer on search.
	// Env: PGML_RECALL_PARAMETERS
	RecallParameters string `envconfig:"RECALL_PARAMETERS"`

	// Distance is the default search metric (cosine, l2, inner_product, l1).
	// Env: PGML_DISTANCE (default: cosine)
	Distance string `envconfig:"DISTANCE" default:"cosine"`

	// SearchLimit is the default number of search results.
	// Env: PGML_SEARCH_LIMIT (default: 10)
	SearchLimit int `envconfig:"SEARCH_LIMIT" default:"10"`
}

// LoadFromEnv loads configuration from PGML_* environment variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix(EnvPrefix)
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig. Malformed parameter JSON is
// an error rather than being dropped, since it changes what gets embedded.
func (e EnvConfig) ToAppConfig() (AppConfig, error) {
	store, err := parseParameters(e.StoreParameters)
	if err != nil {
		return AppConfig{}, fmt.Errorf("PGML_STORE_PARAMETERS: %w", err)
	}
	recall, err := parseParameters(e.RecallParameters)
	if err != nil {
		return AppConfig{}, fmt.Errorf("PGML_RECALL_PARAMETERS: %w", err)
	}

	embedding := NewEmbeddingConfig().
		WithStoreParameters(store).
		WithRecallParameters(recall)
	if e.EmbedFunction != "" {
		embedding = embedding.WithFunction(e.EmbedFunction)
	}
	if e.Transformer != "" {
		embedding = embedding.WithTransformer(e.Transformer)
	}
	if e.Dimensions > 0 {
		embedding = embedding.WithDimensions(e.Dimensions)
	}

	cfg := NewAppConfig().Apply(WithEmbedding(embedding))
	if e.DBURL != "" {
		cfg = cfg.Apply(WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.Distance != "" {
		cfg = cfg.Apply(WithDistance(e.Distance))
	}
	if e.SearchLimit > 0 {
		cfg = cfg.Apply(WithSearchLimit(e.SearchLimit))
	}
	return cfg, nil
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}

// parseParameters decodes a JSON object. Empty input yields nil.
func parseParameters(s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(s), &params); err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}
	return params, nil
}
