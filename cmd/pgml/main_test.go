package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgml "github.com/postgresml/pgml-gorm"
	"github.com/postgresml/pgml-gorm/internal/config"
	"github.com/postgresml/pgml-gorm/internal/testdb"
)

func testModel(t *testing.T) *pgml.Model[Document] {
	t.Helper()
	m, err := documentModel(config.NewEmbeddingConfig())
	require.NoError(t, err)
	return m
}

func testStore(t *testing.T) (documentStore, *testdb.Recorder) {
	t.Helper()
	db, rec := testdb.NewRecording(t, pgml.NewPlugin())
	return documentStore{db: db, model: testModel(t)}, rec
}

func TestDocumentModel_RegistersOnce(t *testing.T) {
	first := testModel(t)
	second := testModel(t)

	assert.Equal(t, first, second)
	col, ok := first.Column(embeddingColumn)
	require.True(t, ok)
	assert.Equal(t, "body", col.Source())
	assert.Equal(t, config.DefaultTransformer, col.Transformer())
	assert.Equal(t, "vector(384)", col.DataType())
}

func TestRunAdd(t *testing.T) {
	store, rec := testStore(t)
	var out bytes.Buffer

	err := runAdd(context.Background(), store, []string{"first text", "second text"}, &out)
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, testdb.KindBegin, calls[0].Kind)
	assert.Contains(t, calls[1].SQL, `INSERT INTO "documents"`)
	assert.Equal(t, 2, strings.Count(calls[1].SQL, "pgml.embed("))
	assert.Contains(t, calls[1].Args, "first text")
	assert.Contains(t, calls[1].Args, "second text")
	assert.Equal(t, testdb.KindCommit, calls[2].Kind)
	assert.Equal(t, 2, strings.Count(out.String(), "added"))
}

func TestRunAdd_RollsBackOnError(t *testing.T) {
	store, rec := testStore(t)
	boom := errors.New("connection reset")
	rec.FailQueries(boom)

	err := runAdd(context.Background(), store, []string{"text"}, &bytes.Buffer{})
	require.ErrorIs(t, err, boom)

	calls := rec.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, testdb.KindRollback, calls[len(calls)-1].Kind)
}

func TestRunAdd_RejectsEmptyText(t *testing.T) {
	store, rec := testStore(t)

	err := runAdd(context.Background(), store, []string{"ok", "  "}, &bytes.Buffer{})
	require.ErrorIs(t, err, errEmptyDocument)
	assert.Zero(t, rec.Count())
}

func TestRunSearch(t *testing.T) {
	store, rec := testStore(t)
	var out bytes.Buffer

	err := runSearch(context.Background(), store, []string{"what is gorm"}, 5, "l2", outputText, &out)
	require.NoError(t, err)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Contains(t, last.SQL, `"documents"."embedding" <-> CAST(pgml.embed(`)
	assert.Contains(t, last.SQL, "AS vector(384)) AS distance")
	assert.Contains(t, last.SQL, "ORDER BY distance LIMIT")
	assert.Contains(t, last.Args, "what is gorm")
	assert.Equal(t, "no documents found\n", out.String())
}

func TestRunSearch_UnknownDistance(t *testing.T) {
	store, rec := testStore(t)

	err := runSearch(context.Background(), store, []string{"q"}, 5, "chebyshev", outputText, &bytes.Buffer{})
	require.ErrorIs(t, err, pgml.ErrUnknownDistance)
	assert.Zero(t, rec.Count())
}

func TestRunExplain(t *testing.T) {
	m := testModel(t)
	db := testdb.NewDryRun(t, pgml.NewPlugin())
	var out bytes.Buffer

	require.NoError(t, runExplain(db, m, "it's here", 3, "cosine", &out))

	sql := out.String()
	assert.Contains(t, sql, `SELECT "documents".*, "documents"."embedding" <=> CAST(pgml.embed('intfloat/e5-small', 'it''s here', '{}'::jsonb) AS vector(384)) AS distance`)
	assert.Contains(t, sql, `FROM "documents" ORDER BY distance LIMIT 3`)
}

func TestRunSearch_ManyQueries(t *testing.T) {
	store, rec := testStore(t)
	var out bytes.Buffer

	err := runSearch(context.Background(), store, []string{"first", "second", "third"}, 2, "cosine", outputText, &out)
	require.NoError(t, err)

	assert.Len(t, rec.Statements(), 3)
	assert.Equal(t, "# first\nno documents found\n# second\nno documents found\n# third\nno documents found\n", out.String())
}

func TestRunSearch_StructuredOutput(t *testing.T) {
	store, _ := testStore(t)

	var js bytes.Buffer
	require.NoError(t, runSearch(context.Background(), store, []string{"q"}, 2, "cosine", outputJSON, &js))
	assert.JSONEq(t, `[{"query": "q", "results": []}]`, js.String())

	var ym bytes.Buffer
	require.NoError(t, runSearch(context.Background(), store, []string{"q"}, 2, "cosine", outputYAML, &ym))
	assert.YAMLEq(t, "- query: q\n  results: []\n", ym.String())

	err := runSearch(context.Background(), store, []string{"q"}, 2, "cosine", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestDocumentStore_Search(t *testing.T) {
	store, rec := testStore(t)

	results, err := store.Search(context.Background(), "q", 0, "")
	require.NoError(t, err)
	assert.Empty(t, results)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Contains(t, last.SQL, "<=>")
	assert.NotContains(t, last.SQL, "LIMIT")
}

func TestVersionCmd(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "pgml version dev")
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"search"})

	assert.Error(t, cmd.Execute())
}
