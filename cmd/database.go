package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/timesheet/db"
	"github.com/frahmantamala/timesheet/internal"
)

// database is the open connection in the two shapes the app needs: gorm for
// the key-value repository, database/sql for health checks and migrations.
type database struct {
	Driver string
	Gorm   *gorm.DB
	SQL    *sql.DB
}

func (d *database) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}

func openDatabase(cfg internal.DatabaseConfig) (*database, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	switch cfg.Driver {
	case internal.DatabaseDriverSQL:
		gdb, err := gorm.Open(sqlite.Open(cfg.GetDSN()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		// sqlite allows one writer; a single connection also keeps ":memory:" shared.
		sqlDB.SetMaxOpenConns(1)
		return &database{Driver: cfg.Driver, Gorm: gdb, SQL: sqlDB}, nil

	default:
		sqlxDB, err := initDB(cfg)
		if err != nil {
			return nil, err
		}
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlxDB.DB}), gormCfg)
		if err != nil {
			_ = sqlxDB.Close()
			return nil, fmt.Errorf("failed to open gorm on postgres pool: %w", err)
		}
		return &database{Driver: internal.DatabaseDriverPG, Gorm: gdb, SQL: sqlxDB.DB}, nil
	}
}

// initDB opens the pgx-backed postgres pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func gooseDialect(driver string) string {
	if driver == internal.DatabaseDriverSQL {
		return "sqlite3"
	}
	return "postgres"
}

// migrateDatabase runs a goose command ("up", "down", "status", ...) with the
// embedded migrations.
func migrateDatabase(ctx context.Context, d *database, command string, logger *slog.Logger) error {
	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect(gooseDialect(d.Driver)); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	logger.Info("running migrations", "command", command, "driver", d.Driver)
	if err := goose.RunContext(ctx, command, d.SQL, db.MigrationsDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
