package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dominic0df/2023-amse/internal/api/models"
)

// PostgresRepository serves the same endpoints when the pipeline writes to PostgreSQL
type PostgresRepository struct {
	pool   *pgxpool.Pool
	tables Tables
}

func NewPostgresRepository(ctx context.Context, databaseURL string, tables Tables) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool, tables: tables}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) GetTowns(ctx context.Context) ([]models.Town, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf("SELECT town, run_id FROM %s ORDER BY town", r.tables.Towns))
	if err != nil {
		return nil, fmt.Errorf("failed to query towns: %w", err)
	}
	towns, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Town])
	if err != nil {
		return nil, fmt.Errorf("failed to scan town rows: %w", err)
	}
	return towns, nil
}

func (r *PostgresRepository) GetConnections(ctx context.Context, filter models.ConnectionFilter) ([]models.Connection, error) {
	query := fmt.Sprintf(`
		SELECT source, destination, duration_minutes, transport_type,
		       start_time, end_time, driving_distance_km, run_id
		FROM %s
		WHERE ($1 = '' OR source = $1)
		  AND ($2 = '' OR destination = $2)
		ORDER BY source, destination, duration_minutes, transport_type`, r.tables.Connections)

	rows, err := r.pool.Query(ctx, query, filter.Source, filter.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	conns, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Connection])
	if err != nil {
		return nil, fmt.Errorf("failed to scan connection rows: %w", err)
	}
	return conns, nil
}

func (r *PostgresRepository) GetTimetable(ctx context.Context, town string) ([]models.TimetableChange, error) {
	query := fmt.Sprintf(`
		SELECT town, station, eva, stop_id, scope, message_id, message_type,
		       code, category, priority, issued_at, valid_from, valid_to
		FROM %s
		WHERE town = $1
		ORDER BY issued_at, message_id`, r.tables.Timetable)

	rows, err := r.pool.Query(ctx, query, town)
	if err != nil {
		return nil, fmt.Errorf("failed to query timetable for %s: %w", town, err)
	}
	changes, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.TimetableChange])
	if err != nil {
		return nil, fmt.Errorf("failed to scan timetable rows: %w", err)
	}
	return changes, nil
}

func (r *PostgresRepository) GetLatestRun(ctx context.Context, stage string) (*models.StageRun, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT run_id, stage, started_at_utc, finished_at_utc, tables_written, rows_written
		FROM pipeline_runs
		WHERE stage = $1
		ORDER BY finished_at_utc DESC
		LIMIT 1`, stage)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest %s run: %w", stage, err)
	}
	run, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.StageRun])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s run: %w", stage, err)
	}
	return &run, nil
}
