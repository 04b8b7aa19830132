// Package config provides application configuration.
package config

import (
	"maps"
)

// Default configuration values.
const (
	DefaultDBURL       = "postgres://postgres@localhost:5432/postgres"
	DefaultLogLevel    = "INFO"
	DefaultFunction    = "pgml.embed"
	DefaultTransformer = "intfloat/e5-small"
	DefaultDimensions  = 384
	DefaultDistance    = "cosine"
	DefaultSearchLimit = 10
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// EmbeddingConfig describes the embedding column of the documents table.
type EmbeddingConfig struct {
	function         string
	transformer      string
	dimensions       int
	storeParameters  map[string]any
	recallParameters map[string]any
}

// NewEmbeddingConfig creates an EmbeddingConfig with defaults.
func NewEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		function:    DefaultFunction,
		transformer: DefaultTransformer,
		dimensions:  DefaultDimensions,
	}
}

// Function returns the database embedding function.
func (e EmbeddingConfig) Function() string { return e.function }

// Transformer returns the transformer identifier.
func (e EmbeddingConfig) Transformer() string { return e.transformer }

// Dimensions returns the vector length.
func (e EmbeddingConfig) Dimensions() int { return e.dimensions }

// StoreParameters returns a copy of the parameters used on save.
func (e EmbeddingConfig) StoreParameters() map[string]any {
	return maps.Clone(e.storeParameters)
}

// RecallParameters returns a copy of the parameters used on search.
func (e EmbeddingConfig) RecallParameters() map[string]any {
	return maps.Clone(e.recallParameters)
}

// WithFunction returns a copy with the embedding function set.
func (e EmbeddingConfig) WithFunction(function string) EmbeddingConfig {
	e.function = function
	return e
}

// WithTransformer returns a copy with the transformer set.
func (e EmbeddingConfig) WithTransformer(transformer string) EmbeddingConfig {
	e.transformer = transformer
	return e
}

// WithDimensions returns a copy with the vector length set.
func (e EmbeddingConfig) WithDimensions(n int) EmbeddingConfig {
	e.dimensions = n
	return e
}

// WithStoreParameters returns a copy with the store parameters set.
func (e EmbeddingConfig) WithStoreParameters(params map[string]any) EmbeddingConfig {
	e.storeParameters = maps.Clone(params)
	return e
}

// WithRecallParameters returns a copy with the recall parameters set.
func (e EmbeddingConfig) WithRecallParameters(params map[string]any) EmbeddingConfig {
	e.recallParameters = maps.Clone(params)
	return e
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	dbURL       string
	logLevel    string
	logFormat   LogFormat
	embedding   EmbeddingConfig
	distance    string
	searchLimit int
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		dbURL:       DefaultDBURL,
		logLevel:    DefaultLogLevel,
		logFormat:   LogFormatPretty,
		embedding:   NewEmbeddingConfig(),
		distance:    DefaultDistance,
		searchLimit: DefaultSearchLimit,
	}
}

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Embedding returns the embedding column configuration.
func (c AppConfig) Embedding() EmbeddingConfig { return c.embedding }

// Distance returns the name of the default distance metric.
func (c AppConfig) Distance() string { return c.distance }

// SearchLimit returns the default search result limit.
func (c AppConfig) SearchLimit() int { return c.searchLimit }

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithEmbedding sets the embedding column configuration.
func WithEmbedding(e EmbeddingConfig) AppConfigOption {
	return func(c *AppConfig) { c.embedding = e }
}

// WithDistance sets the default distance metric.
func WithDistance(name string) AppConfigOption {
	return func(c *AppConfig) { c.distance = name }
}

// WithSearchLimit sets the default search limit.
func WithSearchLimit(n int) AppConfigOption {
	return func(c *AppConfig) { c.searchLimit = n }
}

// NewAppConfigWithOptions creates an AppConfig with defaults and applies opts.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Apply returns a copy of c with opts applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
