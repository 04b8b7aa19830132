package pgml

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// DistanceColumn is the name of the computed distance in search results.
const DistanceColumn = "distance"

type searchConfig struct {
	distance DistanceFunction
}

// SearchOption configures a vector search.
type SearchOption func(*searchConfig)

// WithDistance sets the distance function. The default is CosineDistance.
func WithDistance(d DistanceFunction) SearchOption {
	return func(c *searchConfig) {
		if d != nil {
			c.distance = d
		}
	}
}

// Neighbor is a search result: the matched row and its distance to the query.
type Neighbor[T any] struct {
	Entity   T       `gorm:"embedded"`
	Distance float64 `gorm:"column:distance"`
}

// VectorSearch returns a query over T ranked by distance between column and
// the embedding of query, nearest first. The distance is selected as
// "distance". Nothing runs until a finisher such as Find is called; the
// returned query may be refined with Where, Limit and so on, and every
// finisher issues a new statement.
//
// If column is not a registered embedding column of T the returned query
// carries ErrNotEmbeddingColumn and sends nothing when executed.
func (m *Model[T]) VectorSearch(db *gorm.DB, column, query string, opts ...SearchOption) *gorm.DB {
	cfg := searchConfig{distance: CosineDistance}
	for _, opt := range opts {
		opt(&cfg)
	}

	tx := db.Model(new(T))
	field, col, err := m.resolve(tx, column)
	if err != nil {
		_ = tx.AddError(err)
		return tx.Session(&gorm.Session{})
	}

	distance := cfg.distance.Distance(
		clause.Expr{SQL: "?", Vars: []any{clause.Column{Table: clause.CurrentTable, Name: field.DBName}}},
		col.RecallEmbedding(query),
	)

	return tx.
		Select("?.*, ? AS "+DistanceColumn, clause.Table{Name: clause.CurrentTable}, distance).
		Order(DistanceColumn).
		Session(&gorm.Session{})
}

// Nearest runs VectorSearch and returns up to limit rows with their
// distances. A limit of zero or less returns every row.
func (m *Model[T]) Nearest(ctx context.Context, db *gorm.DB, column, query string, limit int, opts ...SearchOption) ([]Neighbor[T], error) {
	q := m.VectorSearch(db.WithContext(ctx), column, query, opts...)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var found []Neighbor[T]
	if err := q.Find(&found).Error; err != nil {
		return nil, fmt.Errorf("vector search %s: %w", column, err)
	}
	return found, nil
}

// resolve finds the schema field and registered column for name.
func (m *Model[T]) resolve(db *gorm.DB, name string) (*schema.Field, Column, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, Column{}, fmt.Errorf("parse model: %w", err)
	}

	field := stmt.Schema.LookUpField(name)
	if field == nil {
		return nil, Column{}, fmt.Errorf("%w: %s.%s", ErrNotEmbeddingColumn, stmt.Schema.Name, name)
	}
	col, ok := m.entry.columnFor(field)
	if !ok || field.IndirectFieldType != vectorType {
		return nil, Column{}, fmt.Errorf("%w: %s.%s", ErrNotEmbeddingColumn, stmt.Schema.Name, name)
	}
	return field, col, nil
}
