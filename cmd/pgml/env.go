package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	pgml "github.com/postgresml/pgml-gorm"
	"github.com/postgresml/pgml-gorm/internal/config"
	"github.com/postgresml/pgml-gorm/internal/database"
	"github.com/postgresml/pgml-gorm/internal/log"
)

// cmdEnv is what every database command needs: configuration, a logger, the
// registered document model and an open database with the pgml plugin.
type cmdEnv struct {
	cfg    config.AppConfig
	logger *slog.Logger
	model  *pgml.Model[Document]
	db     database.Database
}

// openEnv loads configuration and connects. Log attributes stored in ctx with
// log.WithAttrs are attached to every record. Extra options are passed to the
// database, for example database.WithDryRun.
func openEnv(ctx context.Context, envFile string, opts ...database.Option) (cmdEnv, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return cmdEnv{}, err
	}

	base := log.NewLogger(os.Stderr, cfg)
	base.SetDefault()
	logger := base.FromContext(ctx).Slog()

	model, err := documentModel(cfg.Embedding())
	if err != nil {
		return cmdEnv{}, err
	}

	opts = append([]database.Option{
		database.WithLogger(logger),
		database.WithPlugins(pgml.NewPlugin(pgml.WithLogger(logger))),
	}, opts...)
	db, err := database.NewDatabase(ctx, cfg.DBURL(), opts...)
	if err != nil {
		return cmdEnv{}, fmt.Errorf("connect: %w", err)
	}

	return cmdEnv{cfg: cfg, logger: logger, model: model, db: db}, nil
}

func (e cmdEnv) store() documentStore {
	return documentStore{db: e.db, model: e.model}
}

func (e cmdEnv) close() {
	if err := e.db.Close(); err != nil {
		e.logger.Warn("close database", "error", err)
	}
}
