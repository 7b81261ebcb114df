package db

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the optional server-backed sink.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool against databaseURL and ensures the bookkeeping schema.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Info("connected to PostgreSQL database")
	return &Postgres{pool: pool}, nil
}

// Pool returns the underlying pool.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func postgresType(t ColumnType) string {
	switch t {
	case TypeInteger:
		return "BIGINT"
	case TypeReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// ReplaceTable drops and recreates t.Name, then bulk loads the rows with COPY,
// inside one transaction.
func (p *Postgres) ReplaceTable(ctx context.Context, t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+t.Name); err != nil {
		return fmt.Errorf("failed to drop %s: %w", t.Name, err)
	}
	if _, err := tx.Exec(ctx, t.createStatement(postgresType)); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.Name, err)
	}

	if len(t.Rows) > 0 {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{t.Name}, t.ColumnNames(), pgx.CopyFromRows(t.Rows))
		if err != nil {
			return fmt.Errorf("failed to copy into %s: %w", t.Name, err)
		}
		if int(n) != len(t.Rows) {
			return fmt.Errorf("copied %d rows into %s, want %d", n, t.Name, len(t.Rows))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s: %w", t.Name, err)
	}

	log.Debug("table replaced", "table", t.Name, "rows", len(t.Rows))
	return nil
}

func (p *Postgres) RecordRun(ctx context.Context, r Run) error {
	rec := r.record()
	_, err := p.pool.Exec(ctx, `
		INSERT INTO pipeline_runs (run_id, stage, started_at_utc, finished_at_utc, tables_written, rows_written)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.RunID, rec.Stage, rec.StartedAtUTC, rec.FinishedAtUTC, rec.TablesWritten, rec.RowsWritten,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}
