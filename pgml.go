// Package pgml adds database-computed embedding columns to GORM models.
//
// A model declares one or more Vector fields and registers them with the
// field they are derived from and the transformer that embeds it:
//
//	type Document struct {
//		ID        uint
//		Body      string
//		Embedding pgml.Vector
//	}
//
//	var Documents = pgml.MustRegister[Document](
//		pgml.MustColumn("Embedding",
//			pgml.WithSource("Body"),
//			pgml.WithTransformer("intfloat/e5-small"),
//			pgml.WithDimensions(384),
//			pgml.WithStoreParameters(map[string]any{"instruction": "passage: "}),
//			pgml.WithRecallParameters(map[string]any{"instruction": "query: "}),
//		),
//	)
//
// With the Plugin installed (db.Use(pgml.NewPlugin())), every Create, Save
// or Updates that writes an embedding column sends pgml.embed(...) in place
// of its value, so the row and its embedding are written by one statement.
// Partial updates that do not select the column leave it alone.
//
// Documents.VectorSearch(db, "Embedding", "hello") returns a GORM query
// ordered by the distance between each row and the embedded search text.
//
// No embedding is computed in Go. The database must provide the pgml
// extension and the pgvector type and operators.
package pgml
