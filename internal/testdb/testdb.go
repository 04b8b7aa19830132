// Package testdb provides test database helpers: a recording PostgreSQL
// connection for asserting the SQL GORM sends, and in-memory SQLite
// databases for round trips.
package testdb

import (
	"context"
	"database/sql"
	"testing"

	"github.com/postgresml/pgml-gorm/internal/database"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgres opens a GORM connection with the PostgreSQL dialect over a
// Recorder. Nothing leaves the process; every call is captured.
func NewPostgres(t *testing.T, plugins ...gorm.Plugin) (*gorm.DB, *Recorder) {
	t.Helper()
	db, rec := NewRecording(t, plugins...)
	return db.GORM(), rec
}

// NewRecording is NewPostgres returning the database wrapper, for code that
// takes a database.Database.
func NewRecording(t *testing.T, plugins ...gorm.Plugin) (database.Database, *Recorder) {
	t.Helper()
	ctx := context.Background()
	rec := NewRecorder()
	sqlDB := sql.OpenDB(rec)

	db, err := database.Open(ctx,
		postgres.New(postgres.Config{Conn: sqlDB}),
		database.WithPlugins(plugins...),
	)
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("testdb.NewRecording: open database: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db, rec
}

// NewDryRun opens a PostgreSQL-dialect connection that builds statements
// without executing them. Use with gorm's ToSQL to inspect rendered SQL.
func NewDryRun(t *testing.T, plugins ...gorm.Plugin) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx,
		postgres.New(postgres.Config{DSN: "host=localhost user=postgres dbname=postgres sslmode=disable"}),
		database.WithPlugins(plugins...),
		database.WithDryRun(),
	)
	if err != nil {
		t.Fatalf("testdb.NewDryRun: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db.GORM()
}

// NewSQLite creates an in-memory SQLite database and migrates models.
// The database is automatically closed when the test finishes.
func NewSQLite(t *testing.T, plugins []gorm.Plugin, models ...any) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:", database.WithPlugins(plugins...))
	if err != nil {
		t.Fatalf("testdb.NewSQLite: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	// Every new connection to :memory: is a new database.
	if err := db.ConfigurePool(1, 1, 0); err != nil {
		t.Fatalf("testdb.NewSQLite: configure pool: %v", err)
	}
	if len(models) > 0 {
		if err := db.GORM().AutoMigrate(models...); err != nil {
			t.Fatalf("testdb.NewSQLite: auto migrate: %v", err)
		}
	}
	return db
}
