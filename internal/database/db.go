// Package database opens the MySQL notes database and migrates its schema.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/outliner/internal/config"
	"github.com/at-ishikawa/outliner/schemas"
)

// DSN builds the MySQL data source name. Note content may hold any unicode text, so the
// connection always uses utf8mb4, and timestamps are read and written in UTC.
func DSN(cfg config.DatabaseConfig) string {
	mysqlCfg := mysql.NewConfig()
	mysqlCfg.User = cfg.Username
	mysqlCfg.Passwd = cfg.Password
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mysqlCfg.DBName = cfg.Database
	mysqlCfg.ParseTime = true
	mysqlCfg.Loc = time.UTC
	mysqlCfg.Collation = "utf8mb4_unicode_ci"
	mysqlCfg.MultiStatements = true
	if cfg.TLS {
		mysqlCfg.TLSConfig = "true"
	}
	if len(cfg.Params) > 0 {
		mysqlCfg.Params = cfg.Params
	}
	return mysqlCfg.FormatDSN()
}

// Open opens the notes database. The connection is lazy; the first query dials.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	return db, nil
}

// RunInTx commits when fn succeeds and rolls back otherwise.
func RunInTx(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// MigrationSource returns the embedded SQL migrations.
func MigrationSource() (source.Driver, error) {
	src, err := iofs.New(schemas.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("iofs.New() > %w", err)
	}
	return src, nil
}

// Migrate applies every pending migration. It opens and closes its own connection.
// It returns the schema version after the run.
func Migrate(cfg config.DatabaseConfig) (uint, error) {
	db, err := Open(cfg)
	if err != nil {
		return 0, err
	}

	src, err := MigrationSource()
	if err != nil {
		_ = db.Close()
		return 0, err
	}
	driver, err := migratemysql.WithInstance(db.DB, &migratemysql.Config{DatabaseName: cfg.Database})
	if err != nil {
		_ = db.Close()
		return 0, fmt.Errorf("migratemysql.WithInstance() > %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		_ = driver.Close()
		return 0, fmt.Errorf("migrate.NewWithInstance() > %w", err)
	}
	// Closing the migrator closes db as well.
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("m.Up() > %w", err)
	}
	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("m.Version() > %w", err)
	}
	return version, nil
}
