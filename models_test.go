package pgml_test

import (
	pgml "github.com/postgresml/pgml-gorm"
)

type article struct {
	ID        uint `gorm:"primaryKey"`
	Title     string
	Body      string
	Embedding pgml.Vector
}

var articles = pgml.MustRegister[article](
	pgml.MustColumn("embedding",
		pgml.WithSource("body"),
		pgml.WithTransformer("intfloat/e5-small"),
		pgml.WithDimensions(384),
		pgml.WithStoreParameters(map[string]any{"instruction": "passage: "}),
		pgml.WithRecallParameters(map[string]any{"instruction": "query: "}),
	),
)

// note is never registered.
type note struct {
	ID   uint `gorm:"primaryKey"`
	Text string
}

type missingSource struct {
	ID        uint `gorm:"primaryKey"`
	Body      string
	Embedding pgml.Vector
}

var _ = pgml.MustRegister[missingSource](
	pgml.MustColumn("embedding", pgml.WithSource("summary"), pgml.WithTransformer("t")),
)

type missingColumn struct {
	ID   uint `gorm:"primaryKey"`
	Body string
}

var _ = pgml.MustRegister[missingColumn](
	pgml.MustColumn("embedding", pgml.WithSource("body"), pgml.WithTransformer("t")),
)

type wrongColumnType struct {
	ID        uint `gorm:"primaryKey"`
	Body      string
	Embedding string
}

var wrongColumnTypes = pgml.MustRegister[wrongColumnType](
	pgml.MustColumn("embedding", pgml.WithSource("body"), pgml.WithTransformer("t")),
)

type optionalEmbedding struct {
	ID        uint `gorm:"primaryKey"`
	Body      string
	Embedding *pgml.Vector
}

var _ = pgml.MustRegister[optionalEmbedding](
	pgml.MustColumn("embedding", pgml.WithSource("Body"), pgml.WithTransformer("t")),
)

type person struct {
	ID        uint `gorm:"primaryKey"`
	First     string
	Last      string
	Embedding pgml.Vector
}

func (p person) FullName() string {
	return p.First + " " + p.Last
}

var _ = pgml.MustRegister[person](
	pgml.MustColumn("embedding", pgml.WithSource("FullName"), pgml.WithTransformer("t")),
)

type paper struct {
	ID             uint `gorm:"primaryKey"`
	Title          string
	Abstract       string
	TitleVector    pgml.Vector
	AbstractVector pgml.Vector
}

var papers = pgml.MustRegister[paper](
	pgml.MustColumn("title_vector", pgml.WithSource("title"), pgml.WithTransformer("title-model"), pgml.WithDimensions(3)),
	pgml.MustColumn("AbstractVector", pgml.WithSource("abstract"), pgml.WithTransformer("abstract-model"), pgml.WithFunction("ml.encode")),
)
