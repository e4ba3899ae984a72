package persistence

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/users/*.sql migrations/tickets/*.sql
var migrationsFS embed.FS

// Schema names one service's migration set. Each service keeps its own goose
// version table so both can share a database.
type Schema struct {
	Dir          string
	VersionTable string
}

var (
	UsersSchema   = Schema{Dir: "migrations/users", VersionTable: "goose_users_version"}
	TicketsSchema = Schema{Dir: "migrations/tickets", VersionTable: "goose_tickets_version"}
)

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// RunMigrations applies every pending migration of schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, schema Schema, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}
	return withGoose(pool, schema, logger, func(db *sql.DB) error {
		if err := goose.UpContext(ctx, db, schema.Dir); err != nil {
			return fmt.Errorf("apply migrations %s: %w", schema.Dir, err)
		}
		logger.Info("migrations applied", zap.String("dir", schema.Dir))
		return nil
	})
}

// RollbackMigration reverts the most recent migration of schema.
func RollbackMigration(ctx context.Context, pool *pgxpool.Pool, schema Schema, logger *zap.Logger) error {
	if pool == nil {
		return errors.New("postgres pool not configured")
	}
	return withGoose(pool, schema, logger, func(db *sql.DB) error {
		if err := goose.DownContext(ctx, db, schema.Dir); err != nil {
			return fmt.Errorf("rollback migration %s: %w", schema.Dir, err)
		}
		logger.Info("migration rolled back", zap.String("dir", schema.Dir))
		return nil
	})
}

func withGoose(pool *pgxpool.Pool, schema Schema, logger *zap.Logger, fn func(db *sql.DB) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(schema.VersionTable)
	goose.SetLogger(gooseLogger{sugar: logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return fn(db)
}

type gooseLogger struct {
	sugar *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.sugar.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.sugar.Fatalf(strings.TrimSuffix(format, "\n"), v...)
}
