package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/dominic0df/2023-amse/internal/api/models"
)

// Tables names the tables the repository reads. Names are validated by the
// config layer before they reach a query.
type Tables struct {
	Connections string
	Towns       string
	Timetable   string
}

// SQLiteDB wraps a connection pool for the pipeline's SQLite file
type SQLiteDB struct {
	db *sqlx.DB
}

// NewSQLiteDB opens the database at dbPath
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sqlx.Open("sqlite", "file:"+dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *SQLiteDB) GetDB() *sqlx.DB {
	return s.db
}

// SQLiteRepository serves the network and health endpoints from SQLite
type SQLiteRepository struct {
	db     *sqlx.DB
	tables Tables
}

// NewSQLiteRepository creates a new SQLiteRepository
func NewSQLiteRepository(db *sqlx.DB, tables Tables) *SQLiteRepository {
	return &SQLiteRepository{db: db, tables: tables}
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) GetTowns(ctx context.Context) ([]models.Town, error) {
	towns := []models.Town{}
	query := fmt.Sprintf("SELECT town, run_id FROM %s ORDER BY town", r.tables.Towns)
	if err := r.db.SelectContext(ctx, &towns, query); err != nil {
		return nil, fmt.Errorf("failed to query towns: %w", err)
	}
	return towns, nil
}

func (r *SQLiteRepository) GetConnections(ctx context.Context, filter models.ConnectionFilter) ([]models.Connection, error) {
	query := fmt.Sprintf(`
		SELECT source, destination, duration_minutes, transport_type,
		       start_time, end_time, driving_distance_km, run_id
		FROM %s
		WHERE (? = '' OR source = ?)
		  AND (? = '' OR destination = ?)
		ORDER BY source, destination, duration_minutes, transport_type`, r.tables.Connections)

	conns := []models.Connection{}
	err := r.db.SelectContext(ctx, &conns, query,
		filter.Source, filter.Source, filter.Destination, filter.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	return conns, nil
}

func (r *SQLiteRepository) GetTimetable(ctx context.Context, town string) ([]models.TimetableChange, error) {
	query := fmt.Sprintf(`
		SELECT town, station, eva, stop_id, scope, message_id, message_type,
		       code, category, priority, issued_at, valid_from, valid_to
		FROM %s
		WHERE town = ?
		ORDER BY issued_at, message_id`, r.tables.Timetable)

	changes := []models.TimetableChange{}
	if err := r.db.SelectContext(ctx, &changes, query, town); err != nil {
		return nil, fmt.Errorf("failed to query timetable for %s: %w", town, err)
	}
	return changes, nil
}

// GetLatestRun returns the newest run of stage, or nil if it never ran
func (r *SQLiteRepository) GetLatestRun(ctx context.Context, stage string) (*models.StageRun, error) {
	var run models.StageRun
	err := r.db.GetContext(ctx, &run, `
		SELECT run_id, stage, started_at_utc, finished_at_utc, tables_written, rows_written
		FROM pipeline_runs
		WHERE stage = ?
		ORDER BY finished_at_utc DESC
		LIMIT 1`, stage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest %s run: %w", stage, err)
	}
	return &run, nil
}
