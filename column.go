package pgml

import (
	"fmt"
)

// Column describes an embedding column: which field feeds it, which
// transformer computes it, and the parameters used when storing rows and
// when embedding search text. A Column is immutable once built.
type Column struct {
	name        string
	source      string
	transformer string
	function    string
	dimensions  int
	store       Parameters
	recall      Parameters
}

// columnConfig collects options before parameter maps are encoded.
type columnConfig struct {
	column Column
	store  map[string]any
	recall map[string]any
}

// ColumnOption configures a Column.
type ColumnOption func(*columnConfig)

// WithSource sets the field whose value is embedded. Either the Go field
// name or the database column name may be used.
func WithSource(field string) ColumnOption {
	return func(c *columnConfig) {
		c.column.source = field
	}
}

// WithTransformer sets the model identifier passed to the embed function.
func WithTransformer(transformer string) ColumnOption {
	return func(c *columnConfig) {
		c.column.transformer = transformer
	}
}

// WithDimensions sets the vector length of the column.
func WithDimensions(n int) ColumnOption {
	return func(c *columnConfig) {
		c.column.dimensions = n
	}
}

// WithStoreParameters sets the parameters used when embedding a row on save.
func WithStoreParameters(params map[string]any) ColumnOption {
	return func(c *columnConfig) {
		c.store = params
	}
}

// WithRecallParameters sets the parameters used when embedding search text.
func WithRecallParameters(params map[string]any) ColumnOption {
	return func(c *columnConfig) {
		c.recall = params
	}
}

// WithFunction overrides the database function (default pgml.embed).
func WithFunction(function string) ColumnOption {
	return func(c *columnConfig) {
		c.column.function = function
	}
}

// NewColumn creates a Column for the model field name. Parameter maps are
// encoded immediately, so later changes to them have no effect.
func NewColumn(name string, opts ...ColumnOption) (Column, error) {
	cfg := &columnConfig{column: Column{name: name, function: DefaultFunction}}
	for _, opt := range opts {
		opt(cfg)
	}

	store, err := NewParameters(cfg.store)
	if err != nil {
		return Column{}, fmt.Errorf("column %s store parameters: %w", name, err)
	}
	recall, err := NewParameters(cfg.recall)
	if err != nil {
		return Column{}, fmt.Errorf("column %s recall parameters: %w", name, err)
	}

	col := cfg.column
	col.store = store
	col.recall = recall
	if col.function == "" {
		col.function = DefaultFunction
	}
	return col, nil
}

// MustColumn is like NewColumn but panics on error.
func MustColumn(name string, opts ...ColumnOption) Column {
	col, err := NewColumn(name, opts...)
	if err != nil {
		panic(err)
	}
	return col
}

// Name returns the model field name of the column.
func (c Column) Name() string { return c.name }

// Source returns the name of the field that is embedded.
func (c Column) Source() string { return c.source }

// Transformer returns the transformer identifier.
func (c Column) Transformer() string { return c.transformer }

// Function returns the database embedding function.
func (c Column) Function() string { return c.function }

// Dimensions returns the vector length, or 0 if unset.
func (c Column) Dimensions() int { return c.dimensions }

// StoreParameters returns the parameters used on save.
func (c Column) StoreParameters() Parameters { return c.store }

// RecallParameters returns the parameters used on search.
func (c Column) RecallParameters() Parameters { return c.recall }

// DataType returns the column's database type, e.g. vector(384).
func (c Column) DataType() string {
	if c.dimensions <= 0 {
		return "vector"
	}
	return fmt.Sprintf("vector(%d)", c.dimensions)
}

// StoreEmbedding builds the expression that embeds value for storage.
func (c Column) StoreEmbedding(value any) Embedding {
	return NewEmbedding(value, c.transformer, c.store).WithFunction(c.function)
}

// RecallEmbedding builds the expression that embeds search text, cast to the
// column type so distance operators resolve.
func (c Column) RecallEmbedding(query string) Cast {
	return Cast{
		Expression: NewEmbedding(query, c.transformer, c.recall).WithFunction(c.function),
		Type:       c.DataType(),
	}
}
