package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// schemaSQL holds the bookkeeping tables that exist independently of the
// replaced data tables.
//
//go:embed schema.sql
var schemaSQL string

// insertBatchSize bounds the bind variables per INSERT well below SQLite's limit.
const insertBatchSize = 200

// SQLite is the default sink, a single local database file.
type SQLite struct {
	conn    *sqlx.DB
	writeMu sync.Mutex // serializes writers; SQLite allows one at a time
}

// Connect opens a SQLite database with WAL mode enabled and ensures the
// bookkeeping schema.
func Connect(ctx context.Context, dbPath string) (*SQLite, error) {
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 10000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			log.Warn("failed to set pragma", "pragma", pragma, "err", err)
		}
	}

	db := &SQLite{conn: conn}
	if err := db.ensureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info("connected to SQLite database", "path", dbPath)
	return db, nil
}

func (db *SQLite) ensureSchema(ctx context.Context) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if _, err := db.conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying handle for readers such as the API repository.
func (db *SQLite) Conn() *sqlx.DB {
	return db.conn
}

func sqliteType(t ColumnType) string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// ReplaceTable drops t.Name, recreates it from t.Columns and inserts every
// row, all in one transaction. Readers see either the old or the new table.
func (db *SQLite) ReplaceTable(ctx context.Context, t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+t.Name); err != nil {
		return fmt.Errorf("failed to drop %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, t.createStatement(sqliteType)); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.Name, err)
	}

	if len(t.Rows) > 0 {
		names := t.ColumnNames()
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
			t.Name, strings.Join(names, ", "), strings.Join(names, ", :"))

		for start := 0; start < len(t.Rows); start += insertBatchSize {
			end := min(start+insertBatchSize, len(t.Rows))

			batch := make([]map[string]interface{}, 0, end-start)
			for _, row := range t.Rows[start:end] {
				m := make(map[string]interface{}, len(names))
				for i, name := range names {
					m[name] = row[i]
				}
				batch = append(batch, m)
			}

			if _, err := tx.NamedExecContext(ctx, query, batch); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", t.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", t.Name, err)
	}

	log.Debug("table replaced", "table", t.Name, "rows", len(t.Rows))
	return nil
}

// RecordRun appends one row to pipeline_runs.
func (db *SQLite) RecordRun(ctx context.Context, r Run) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO pipeline_runs (run_id, stage, started_at_utc, finished_at_utc, tables_written, rows_written)
		VALUES (:run_id, :stage, :started_at_utc, :finished_at_utc, :tables_written, :rows_written)`,
		r.record())
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}
