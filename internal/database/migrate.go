package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrator applies the embedded goose migrations.
type Migrator struct {
	db  *sql.DB
	log *zap.Logger
}

// NewMigrator configures goose for MySQL and the embedded migration files.
func NewMigrator(db *sql.DB, log *zap.Logger) (*Migrator, error) {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("mysql"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return &Migrator{db: db, log: log}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	m.log.Info("applying database migrations")
	if err := goose.UpContext(ctx, m.db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	v, err := m.Version(ctx)
	if err != nil {
		return err
	}
	m.log.Info("migrations applied", zap.Int64("version", v))
	return nil
}

// Version returns the current schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}
