package persist

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// VersionTable is the goose bookkeeping table. It is kept apart from the
// default name so the recorder can share a database with other services.
const VersionTable = "horizon_recorder_version"

//go:embed migrations/*.sql
var recorderSchema embed.FS

// Migrate brings the run recorder schema up to date and returns the schema
// version it ended on.
func (db *DB) Migrate(ctx context.Context) (int64, error) {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(recorderSchema)
	goose.SetTableName(VersionTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("set dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return 0, fmt.Errorf("migrate recorder schema: %w", err)
	}
	version, err := goose.GetDBVersion(sqlDB)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	db.log.Debug("recorder schema ready",
		zap.String("table", VersionTable),
		zap.Int64("version", version))
	return version, nil
}
