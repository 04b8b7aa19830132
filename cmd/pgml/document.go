package main

import (
	"errors"
	"fmt"
	"time"

	pgml "github.com/postgresml/pgml-gorm"
	"github.com/postgresml/pgml-gorm/internal/config"
)

// embeddingColumn is the embedding column of the documents table.
const embeddingColumn = "embedding"

// Document is a row of the documents table. Embedding is computed by the
// database from Body on every save.
type Document struct {
	ID        uint   `gorm:"primaryKey"`
	Body      string `gorm:"not null"`
	Embedding pgml.Vector
	CreatedAt time.Time
}

// documentModel registers Document with the embedding settings in cfg. The
// registry is process wide, so a second call returns the first registration.
func documentModel(cfg config.EmbeddingConfig) (*pgml.Model[Document], error) {
	if m, err := pgml.Lookup[Document](); err == nil {
		return m, nil
	}

	col, err := pgml.NewColumn(embeddingColumn,
		pgml.WithSource("body"),
		pgml.WithTransformer(cfg.Transformer()),
		pgml.WithDimensions(cfg.Dimensions()),
		pgml.WithFunction(cfg.Function()),
		pgml.WithStoreParameters(cfg.StoreParameters()),
		pgml.WithRecallParameters(cfg.RecallParameters()),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding column: %w", err)
	}

	m, err := pgml.Register[Document](col)
	if errors.Is(err, pgml.ErrAlreadyRegistered) {
		return pgml.Lookup[Document]()
	}
	if err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}
	return m, nil
}
