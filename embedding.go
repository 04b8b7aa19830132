package pgml

import (
	"gorm.io/gorm/clause"
)

// DefaultFunction is the database function that computes embeddings.
const DefaultFunction = "pgml.embed"

// Embedding is a clause.Expression for a call to the database embedding
// function:
//
//	pgml.embed(transformer, input, parameters::jsonb)
//
// It is never evaluated locally. The transformer, the input and the encoded
// parameters are emitted as bind variables, so the dialector's own quoting
// applies when the statement is explained or logged.
type Embedding struct {
	function    string
	transformer string
	input       any
	parameters  Parameters
}

// NewEmbedding creates an Embedding of input. input is either a plain value
// (usually a string) or a clause.Expression such as a column.
func NewEmbedding(input any, transformer string, parameters Parameters) Embedding {
	return Embedding{
		function:    DefaultFunction,
		transformer: transformer,
		input:       input,
		parameters:  parameters,
	}
}

// WithFunction returns a copy of e calling function instead of pgml.embed.
func (e Embedding) WithFunction(function string) Embedding {
	if function != "" {
		e.function = function
	}
	return e
}

// Function returns the name of the database function.
func (e Embedding) Function() string { return e.function }

// Transformer returns the transformer identifier.
func (e Embedding) Transformer() string { return e.transformer }

// Input returns the value being embedded.
func (e Embedding) Input() any { return e.input }

// Parameters returns the transformer parameters.
func (e Embedding) Parameters() Parameters { return e.parameters }

// Build implements clause.Expression.
func (e Embedding) Build(builder clause.Builder) {
	function := e.function
	if function == "" {
		function = DefaultFunction
	}
	builder.WriteString(function)
	builder.WriteByte('(')
	builder.AddVar(builder, e.transformer)
	builder.WriteString(", ")
	builder.AddVar(builder, e.input)
	builder.WriteString(", ")
	builder.AddVar(builder, e.parameters.JSON())
	builder.WriteString("::jsonb)")
}

// Cast converts an expression to a database type: CAST(expr AS type).
type Cast struct {
	Expression clause.Expression
	Type       string
}

// Build implements clause.Expression.
func (c Cast) Build(builder clause.Builder) {
	builder.WriteString("CAST(")
	c.Expression.Build(builder)
	builder.WriteString(" AS ")
	builder.WriteString(c.Type)
	builder.WriteByte(')')
}
