package sqlstore

import (
	"context"
	"embed"

	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func RunMigrations(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if err := goose.SetDialect(gooseDialect(db)); err != nil {
		return err
	}

	goose.SetLogger(logging.Printf{Component: "goose", Level: zerolog.InfoLevel})
	goose.SetBaseFS(migrationsFS)
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return err
	}

	return nil
}

// MigrationVersion reports the applied schema version.
func MigrationVersion(ctx context.Context, db *gorm.DB) (int64, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, err
	}
	if err := goose.SetDialect(gooseDialect(db)); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, sqlDB)
}

func gooseDialect(db *gorm.DB) string {
	if db.Dialector.Name() == DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}
