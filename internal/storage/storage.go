// Package storage persists campaign profiles and recorded battles with GORM.
// SQLite is the default backend; Postgres is used when configured.
package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Garsondee/squadclash/internal/config"
)

// Drivers accepted in config.StorageConfig.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// MemoryDSN opens a shared in-memory SQLite database.
const MemoryDSN = "file::memory:?cache=shared"

var ErrUnknownDriver = errors.New("unknown storage driver")

// Models lists every table migrated by Open.
var Models = []any{
	&Profile{},
	&BattleRecord{},
	&BattleEventRecord{},
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode = MEMORY;",
	"PRAGMA synchronous = OFF;",
	"PRAGMA cache_size = -32000;",
	"PRAGMA temp_store = MEMORY;",
}

// Store wraps a migrated database connection.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open connects to the configured backend and migrates the schema.
func Open(cfg config.StorageConfig, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("component", "storage")

	gcfg := &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite, "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = MemoryDSN
		}
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
		}
		for _, pragma := range sqlitePragmas {
			if err := db.Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("error setting PRAGMA: %w", err)
			}
		}
		log.Info("using sqlite database", "dsn", dsn)
	case DriverPostgres:
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Info("connected to postgres")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
