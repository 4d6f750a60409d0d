// Package sqlstore persists the inventory in SQLite or PostgreSQL through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	msqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

type Repository struct {
	db *gorm.DB
}

var _ domain.InventoryRepository = (*Repository)(nil)

func Open(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.New(logging.Printf{Component: "gorm", Level: zerolog.WarnLevel}, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		db, err := gorm.Open(gormsqlite.Dialector{
			DriverName: "sqlite",
			DSN:        opts.DSN,
		}, cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one writer keeps allocate-then-insert sequences serialized
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
			return nil, err
		}
		return db, nil
	case DriverPostgres:
		db, err := gorm.Open(postgres.Open(opts.DSN), cfg)
		if err != nil {
			return nil, err
		}
		if opts.MaxOpenConns > 0 {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithinTx(ctx context.Context, fn func(tx domain.InventoryRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// classify maps driver failures onto the domain error kinds.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.Error{Kind: domain.ErrNotFound, Message: "record not found", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.HasSuffix(pgErr.ConstraintName, "_pkey") {
			return &domain.Error{Kind: domain.ErrAllocationConflict, Message: pgErr.Message, Err: err}
		}
		return &domain.Error{Kind: domain.ErrDuplicate, Message: pgErr.Message, Err: err}
	}

	var sqErr *msqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return &domain.Error{Kind: domain.ErrAllocationConflict, Message: sqErr.Error(), Err: err}
		case sqlitelib.SQLITE_CONSTRAINT_UNIQUE:
			return &domain.Error{Kind: domain.ErrDuplicate, Message: sqErr.Error(), Err: err}
		}
	}

	return domain.Storage(err)
}

// notFound turns a missing row into a NotFound error carrying msg.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(format, args...)
	}
	return classify(err)
}

func like(v string) string {
	return "%" + strings.TrimSpace(v) + "%"
}

func exists(ctx context.Context, db *gorm.DB, model any, where string, args ...any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where(where, args...).Count(&count).Error; err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}
