package pgml_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pgml "github.com/postgresml/pgml-gorm"
	"github.com/postgresml/pgml-gorm/internal/testdb"
)

func TestPlugin_Name(t *testing.T) {
	assert.Equal(t, "pgml", pgml.NewPlugin().Name())
}

func TestPlugin_InsertEmbedsSource(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	a := article{Title: "GORM", Body: "GORM is an ORM for Go"}
	require.NoError(t, db.Create(&a).Error)

	e, ok := a.Embedding.Embedding()
	require.True(t, ok)
	assert.Equal(t, "GORM is an ORM for Go", e.Input())
	assert.Equal(t, "intfloat/e5-small", e.Transformer())
	assert.JSONEq(t, `{"instruction": "passage: "}`, e.Parameters().JSON())

	calls := rec.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, testdb.KindBegin, calls[0].Kind)
	assert.Equal(t, testdb.KindCommit, calls[2].Kind)

	insert := calls[1]
	assert.Contains(t, insert.SQL, `INSERT INTO "articles"`)
	assert.Contains(t, insert.SQL, `pgml.embed($3, $4, $5::jsonb)`)
	assert.Equal(t, []any{"GORM", "GORM is an ORM for Go", "intfloat/e5-small", "GORM is an ORM for Go", `{"instruction":"passage: "}`}, insert.Args)
}

func TestPlugin_InsertIgnoresOmit(t *testing.T) {
	db, _ := testdb.NewPostgres(t, pgml.NewPlugin())

	a := article{Body: "text"}
	require.NoError(t, db.Omit("embedding").Create(&a).Error)

	assert.True(t, a.Embedding.IsPending())
}

func TestPlugin_FullUpdateEmbeds(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	a := article{ID: 7, Title: "t", Body: "rewritten body"}
	require.NoError(t, db.Save(&a).Error)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Contains(t, last.SQL, `UPDATE "articles" SET`)
	assert.Contains(t, last.SQL, `"embedding"=pgml.embed(`)
	assert.Contains(t, last.Args, "rewritten body")
	assert.True(t, a.Embedding.IsPending())
}

func TestPlugin_FullUpdateRespectsOmit(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	a := article{ID: 7, Title: "t", Body: "body"}
	require.NoError(t, db.Omit("embedding").Save(&a).Error)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.NotContains(t, last.SQL, "pgml.embed")
	assert.False(t, a.Embedding.IsPending())
}

func TestPlugin_UpdatesStructEmbeds(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	a := article{ID: 3, Body: "changed"}
	require.NoError(t, db.Updates(&a).Error)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Contains(t, last.SQL, "pgml.embed(")
}

func TestPlugin_PartialUpdate(t *testing.T) {
	tests := []struct {
		name   string
		fields []any
		embeds bool
	}{
		{name: "other column only", fields: []any{"title"}, embeds: false},
		{name: "source without column", fields: []any{"body"}, embeds: false},
		{name: "embedding column by db name", fields: []any{"body", "embedding"}, embeds: true},
		{name: "embedding column by field name", fields: []any{"Embedding"}, embeds: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

			a := article{ID: 1, Title: "title", Body: "body"}
			require.NoError(t, db.Select(tt.fields[0], tt.fields[1:]...).Updates(&a).Error)

			last, ok := rec.Last()
			require.True(t, ok)
			assert.Equal(t, tt.embeds, strings.Contains(last.SQL, "pgml.embed("), last.SQL)
			assert.Equal(t, tt.embeds, a.Embedding.IsPending())
		})
	}
}

func TestPlugin_PartialUpdateValueDestination(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	a := article{ID: 1, Title: "title", Body: "old body"}
	require.NoError(t, db.Model(&a).Select("body", "embedding").Updates(article{Body: "new body"}).Error)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Contains(t, last.SQL, `"embedding"=pgml.embed(`)
	assert.NotContains(t, last.SQL, `"embedding"=NULL`)
	assert.Contains(t, last.Args, "intfloat/e5-small")
	assert.Contains(t, last.Args, "new body")
}

func TestPlugin_CreateValueDestination(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	require.NoError(t, db.Create(article{Title: "t", Body: "by value"}).Error)

	statements := rec.Statements()
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0].SQL, `INSERT INTO "articles"`)
	assert.Contains(t, statements[0].SQL, "pgml.embed(")
	assert.Contains(t, statements[0].Args, "by value")
}

func TestPlugin_MapUpdatesUntouched(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	a := article{ID: 1, Body: "body"}
	require.NoError(t, db.Model(&a).Updates(map[string]any{"title": "new"}).Error)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.NotContains(t, last.SQL, "pgml.embed")
	assert.False(t, a.Embedding.IsPending())
}

func TestPlugin_MissingSourceSendsNothing(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	err := db.Create(&missingSource{Body: "x"}).Error
	require.ErrorIs(t, err, pgml.ErrSourceFieldNotFound)
	assert.Contains(t, err.Error(), "`summary`")
	assert.Zero(t, rec.Count())
}

func TestPlugin_MissingSourceCheckedWhenColumnExcluded(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	m := missingSource{ID: 1, Body: "x"}
	err := db.Select("body").Updates(&m).Error
	require.ErrorIs(t, err, pgml.ErrSourceFieldNotFound)
	assert.Zero(t, rec.Count())
}

func TestPlugin_ColumnErrors(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	err := db.Create(&missingColumn{Body: "x"}).Error
	assert.ErrorIs(t, err, pgml.ErrColumnNotFound)

	err = db.Create(&wrongColumnType{Body: "x"}).Error
	assert.ErrorIs(t, err, pgml.ErrNotEmbeddingColumn)

	assert.Zero(t, rec.Count())
}

func TestPlugin_Batch(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	batch := []article{{Body: "one"}, {Body: "two"}, {Body: "three"}}
	require.NoError(t, db.Create(&batch).Error)

	for _, a := range batch {
		e, ok := a.Embedding.Embedding()
		require.True(t, ok)
		assert.Equal(t, a.Body, e.Input())
	}

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, 3, strings.Count(last.SQL, "pgml.embed("))
}

func TestPlugin_BatchOfPointers(t *testing.T) {
	db, _ := testdb.NewPostgres(t, pgml.NewPlugin())

	batch := []*article{{Body: "one"}, {Body: "two"}}
	require.NoError(t, db.Create(&batch).Error)

	assert.True(t, batch[0].Embedding.IsPending())
	assert.True(t, batch[1].Embedding.IsPending())
}

func TestPlugin_PointerVectorField(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	o := optionalEmbedding{Body: "text"}
	require.NoError(t, db.Create(&o).Error)

	require.NotNil(t, o.Embedding)
	assert.True(t, o.Embedding.IsPending())
	last, _ := rec.Last()
	assert.Contains(t, last.SQL, "pgml.embed(")
}

func TestPlugin_MethodSource(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	require.NoError(t, db.Create(&person{First: "Ada", Last: "Lovelace"}).Error)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Contains(t, last.Args, "Ada Lovelace")
}

func TestPlugin_MultipleColumns(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())

	p := paper{Title: "Attention", Abstract: "Transformers"}
	require.NoError(t, db.Create(&p).Error)

	title, ok := p.TitleVector.Embedding()
	require.True(t, ok)
	assert.Equal(t, "Attention", title.Input())
	assert.Equal(t, "title-model", title.Transformer())

	abstract, ok := p.AbstractVector.Embedding()
	require.True(t, ok)
	assert.Equal(t, "Transformers", abstract.Input())
	assert.Equal(t, "ml.encode", abstract.Function())

	last, _ := rec.Last()
	assert.Contains(t, last.SQL, "pgml.embed(")
	assert.Contains(t, last.SQL, "ml.encode(")
}

func TestPlugin_PartialUpdateSelectsOneOfMany(t *testing.T) {
	db, _ := testdb.NewPostgres(t, pgml.NewPlugin())

	p := paper{ID: 2, Title: "New title", Abstract: "unchanged"}
	require.NoError(t, db.Select("title", "title_vector").Updates(&p).Error)

	assert.True(t, p.TitleVector.IsPending())
	assert.False(t, p.AbstractVector.IsPending())
}

func TestPlugin_UnregisteredModelUnchanged(t *testing.T) {
	plain, plainRec := testdb.NewPostgres(t)
	hooked, hookedRec := testdb.NewPostgres(t, pgml.NewPlugin())

	require.NoError(t, plain.Create(&note{Text: "hello"}).Error)
	require.NoError(t, hooked.Create(&note{Text: "hello"}).Error)
	require.NoError(t, plain.Save(&note{ID: 4, Text: "again"}).Error)
	require.NoError(t, hooked.Save(&note{ID: 4, Text: "again"}).Error)

	assert.Equal(t, plainRec.Calls(), hookedRec.Calls())
}

func TestPlugin_UnregisteredModelRoundTrip(t *testing.T) {
	db := testdb.NewSQLite(t, []gorm.Plugin{pgml.NewPlugin()}, &note{})
	ctx := context.Background()

	n := note{Text: "plain row"}
	require.NoError(t, db.Session(ctx).Create(&n).Error)
	require.NotZero(t, n.ID)

	n.Text = "updated"
	require.NoError(t, db.Session(ctx).Save(&n).Error)

	var got note
	require.NoError(t, db.Session(ctx).First(&got, n.ID).Error)
	assert.Equal(t, "updated", got.Text)
}

func TestPlugin_DatabaseErrorPropagates(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())
	boom := errors.New("relation \"articles\" does not exist")
	rec.FailQueries(boom)

	err := db.Create(&article{Body: "x"}).Error
	assert.ErrorIs(t, err, boom)

	calls := rec.Calls()
	require.NotEmpty(t, calls)
	assert.Equal(t, testdb.KindRollback, calls[len(calls)-1].Kind)
}

func TestPlugin_UpdateErrorPropagates(t *testing.T) {
	db, rec := testdb.NewPostgres(t, pgml.NewPlugin())
	boom := errors.New("function pgml.embed does not exist")
	rec.FailExecs(boom)

	err := db.Save(&article{ID: 1, Body: "x"}).Error
	assert.ErrorIs(t, err, boom)
}
