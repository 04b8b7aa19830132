package pgml

import (
	"context"
	"database/sql/driver"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Vector is the Go type of an embedding column. It holds either a vector
// read from the database or a pending Embedding that the database will
// compute when the enclosing statement runs.
type Vector struct {
	vec     pgvector.Vector
	pending *Embedding
}

// NewVector creates a Vector holding values. The input is copied.
func NewVector(values []float32) Vector {
	cp := make([]float32, len(values))
	copy(cp, values)
	return Vector{vec: pgvector.NewVector(cp)}
}

// Pending creates a Vector whose value is computed by e on save.
func Pending(e Embedding) Vector {
	return Vector{pending: &e}
}

// Slice returns a copy of the stored values, or nil if none were loaded.
func (v Vector) Slice() []float32 {
	s := v.vec.Slice()
	if s == nil {
		return nil
	}
	cp := make([]float32, len(s))
	copy(cp, s)
	return cp
}

// Dimension returns the number of stored values.
func (v Vector) Dimension() int {
	return len(v.vec.Slice())
}

// Embedding returns the pending embedding, if any.
func (v Vector) Embedding() (Embedding, bool) {
	if v.pending == nil {
		return Embedding{}, false
	}
	return *v.pending, true
}

// IsPending reports whether the value is an unevaluated embedding.
func (v Vector) IsPending() bool {
	return v.pending != nil
}

// Scan implements sql.Scanner.
func (v *Vector) Scan(src any) error {
	v.pending = nil
	if src == nil {
		v.vec = pgvector.Vector{}
		return nil
	}
	return v.vec.Scan(src)
}

// Value implements driver.Valuer. A pending embedding has no driver value.
func (v Vector) Value() (driver.Value, error) {
	if v.pending != nil {
		return nil, ErrPendingEmbedding
	}
	if v.vec.Slice() == nil {
		return nil, nil
	}
	return v.vec.Value()
}

// GormValue implements gorm.Valuer. A pending embedding is compiled into the
// statement as a function call; a stored vector is sent as a bind variable.
func (v Vector) GormValue(_ context.Context, _ *gorm.DB) clause.Expr {
	if v.pending != nil {
		return clause.Expr{SQL: "?", Vars: []any{*v.pending}}
	}
	if v.vec.Slice() == nil {
		return clause.Expr{SQL: "NULL"}
	}
	return clause.Expr{SQL: "?", Vars: []any{v.vec}}
}

// GormDataType implements schema.GormDataTypeInterface.
func (Vector) GormDataType() string {
	return "vector"
}

// GormDBDataType sizes the column from its registered dimensions. An
// explicit type tag on the field takes precedence.
func (Vector) GormDBDataType(_ *gorm.DB, field *schema.Field) string {
	if _, ok := field.TagSettings["TYPE"]; ok {
		return ""
	}
	if field.Schema != nil {
		if entry, ok := lookup(field.Schema.ModelType); ok {
			if col, ok := entry.columnFor(field); ok {
				return col.DataType()
			}
		}
	}
	return "vector"
}
