package persistence

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the shared GORM handle plus the dialect it was opened with.
type Database struct {
	DB     *gorm.DB
	driver string
}

type Option func(*gorm.Config)

// WithLogger installs a statement logger, normally the zap adapter.
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

// NewDatabase opens postgres or sqlite according to cfg.Driver and sizes the
// connection pool. Timestamps are written in UTC.
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	gc := &gorm.Config{
		Logger:                   logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction:   true,
		DisableNestedTransaction: true,
		NowFunc:                  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(gc)
	}

	dialector := postgres.Open(cfg.DSN())
	if cfg.Driver == "sqlite" {
		dialector = sqlite.Open(SQLiteDSN(cfg.Path))
	} else {
		gc.PrepareStmt = true
	}

	db, err := gorm.Open(dialector, gc)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", dialector.Name(), err)
	}
	d := &Database{DB: db, driver: dialector.Name()}

	sqlDB, err := d.sqlDB()
	if err != nil {
		return nil, err
	}
	configurePool(sqlDB, cfg)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return d, nil
}

func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	if cfg.Driver == "sqlite" && isMemoryPath(cfg.Path) {
		// each new connection to :memory: is a separate empty database
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// SQLiteDSN appends the connection pragmas: foreign keys on, a busy timeout,
// BEGIN IMMEDIATE so writers queue on the lock, and WAL for file databases.
func SQLiteDSN(path string) string {
	params := "_foreign_keys=on&_busy_timeout=10000&_txlock=immediate"
	if !isMemoryPath(path) {
		params += "&_journal_mode=WAL"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params
}

func isMemoryPath(path string) bool {
	return strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory")
}

// Driver is "postgres" or "sqlite".
func (d *Database) Driver() string { return d.driver }

func (d *Database) sqlDB() (*sql.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("database: underlying sql.DB: %w", err)
	}
	return sqlDB, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) Ping() error {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Stats reports the connection pool counters.
func (d *Database) Stats() (sql.DBStats, error) {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}
