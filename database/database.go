// Package database owns the PostgreSQL schema: embedded goose migrations,
// the list of tables they create and small helpers shared by repositories.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Tables lists every table created by the migrations, children first.
var Tables = []string{
	"user_session_licenses",
	"user_sessions",
	"licenses",
	"software",
	"group_members",
	"groups",
	"email_addresses",
	"users",
}

// DBTX is the subset of database/sql used by repositories. Both *sql.DB
// and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// gooseUpContext is replaced in tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise. Panics roll back and are rethrown.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

// Truncate empties every table in Tables and restarts their id sequences.
func Truncate(ctx context.Context, db *sql.DB) error {
	return WithTx(ctx, db, func(ctx context.Context, tx DBTX) error {
		query := "TRUNCATE TABLE " + strings.Join(Tables, ", ") + " RESTART IDENTITY"
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to truncate tables: %w", err)
		}
		return nil
	})
}
