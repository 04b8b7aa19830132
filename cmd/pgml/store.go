package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	pgml "github.com/postgresml/pgml-gorm"
	"github.com/postgresml/pgml-gorm/internal/database"
	"github.com/postgresml/pgml-gorm/internal/mcp"
)

var errEmptyDocument = errors.New("empty document")

// documentStore saves and searches documents. Embeddings are computed by the
// database through the pgml plugin installed on db.
type documentStore struct {
	db    database.Database
	model *pgml.Model[Document]
}

// Add inserts one document per text in a single transaction and returns
// their ids.
func (s documentStore) Add(ctx context.Context, texts []string) ([]uint, error) {
	docs := make([]Document, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, errEmptyDocument
		}
		docs = append(docs, Document{Body: text})
	}

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		return tx.Create(&docs).Error
	})
	if err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}

	ids := make([]uint, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids, nil
}

// Search returns up to limit documents nearest to query under the named
// distance metric.
func (s documentStore) Search(ctx context.Context, query string, limit int, distance string) ([]mcp.Result, error) {
	d, err := pgml.ParseDistance(distance)
	if err != nil {
		return nil, err
	}

	found, err := s.model.Nearest(ctx, s.db.GORM(), embeddingColumn, query, limit, pgml.WithDistance(d))
	if err != nil {
		return nil, err
	}

	results := make([]mcp.Result, len(found))
	for i, n := range found {
		results[i] = mcp.Result{ID: n.Entity.ID, Body: n.Entity.Body, Distance: n.Distance}
	}
	return results, nil
}
