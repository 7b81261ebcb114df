package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testTable(rows ...[]any) Table {
	return Table{
		Name: "connections",
		Columns: []Column{
			{Name: "source", Type: TypeText},
			{Name: "destination", Type: TypeText},
			{Name: "duration_minutes", Type: TypeInteger},
			{Name: "driving_distance_km", Type: TypeReal},
		},
		Rows: rows,
	}
}

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := Connect(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteReplaceTable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	first := testTable(
		[]any{"Bremerhaven", "Marl", 322, 412.5},
		[]any{"Marl", "Dorsten", 12, nil},
	)
	if err := db.ReplaceTable(ctx, first); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	var count int
	if err := db.Conn().GetContext(ctx, &count, "SELECT COUNT(*) FROM connections"); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	var nulls int
	if err := db.Conn().GetContext(ctx, &nulls, "SELECT COUNT(*) FROM connections WHERE driving_distance_km IS NULL"); err != nil {
		t.Fatal(err)
	}
	if nulls != 1 {
		t.Errorf("expected 1 NULL distance, got %d", nulls)
	}

	// second write fully replaces the first
	second := testTable([]any{"A", "B", 1, 2.0})
	if err := db.ReplaceTable(ctx, second); err != nil {
		t.Fatalf("second ReplaceTable failed: %v", err)
	}

	var sources []string
	if err := db.Conn().SelectContext(ctx, &sources, "SELECT source FROM connections"); err != nil {
		t.Fatal(err)
	}
	if len(sources) != 1 || sources[0] != "A" {
		t.Errorf("expected only the replacement row, got %v", sources)
	}
}

func TestSQLiteReplaceTableBatches(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	var rows [][]any
	for i := 0; i < insertBatchSize*2+7; i++ {
		rows = append(rows, []any{"A", "B", i, nil})
	}
	if err := db.ReplaceTable(ctx, testTable(rows...)); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	var count int
	if err := db.Conn().GetContext(ctx, &count, "SELECT COUNT(*) FROM connections"); err != nil {
		t.Fatal(err)
	}
	if count != len(rows) {
		t.Errorf("expected %d rows, got %d", len(rows), count)
	}
}

func TestSQLiteReplaceTableEmpty(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if err := db.ReplaceTable(ctx, testTable()); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	var count int
	if err := db.Conn().GetContext(ctx, &count, "SELECT COUNT(*) FROM connections"); err != nil {
		t.Fatalf("empty table was not created: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty table, got %d rows", count)
	}
}

func TestSQLiteRejectsBadTables(t *testing.T) {
	db := openTestDB(t)

	tests := []struct {
		name  string
		table Table
	}{
		{"injected name", Table{Name: "x; DROP TABLE y", Columns: []Column{{Name: "a"}}}},
		{"bad column", Table{Name: "t", Columns: []Column{{Name: "a b"}}}},
		{"no columns", Table{Name: "t"}},
		{"short row", Table{Name: "t", Columns: []Column{{Name: "a"}, {Name: "b"}}, Rows: [][]any{{"x"}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := db.ReplaceTable(context.Background(), tc.table); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSQLiteRecordRun(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	now := time.Now()
	run := Run{ID: "run-1", Stage: "connections", StartedAt: now.Add(-time.Minute), FinishedAt: now, TablesWritten: 2, RowsWritten: 40}
	if err := db.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	var got runRecord
	if err := db.Conn().GetContext(ctx, &got, "SELECT * FROM pipeline_runs WHERE run_id = ?", "run-1"); err != nil {
		t.Fatal(err)
	}
	if got != run.record() {
		t.Errorf("stored run = %+v, want %+v", got, run.record())
	}
}

func TestPostgresReplaceTable(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	pg, err := ConnectPostgres(ctx, url)
	if err != nil {
		t.Fatalf("ConnectPostgres failed: %v", err)
	}
	defer pg.Close()

	table := testTable([]any{"Bremerhaven", "Marl", 322, 412.5}, []any{"Marl", "Dorsten", 12, nil})
	table.Name = "connections_test"
	if err := pg.ReplaceTable(ctx, table); err != nil {
		t.Fatalf("ReplaceTable failed: %v", err)
	}

	var count int
	if err := pg.pool.QueryRow(ctx, "SELECT COUNT(*) FROM connections_test").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows, got %d", count)
	}
	pg.pool.Exec(ctx, "DROP TABLE connections_test")
}

func TestValidateIdentifier(t *testing.T) {
	for _, ok := range []string{"connections", "town_stations", "_t1"} {
		if err := ValidateIdentifier(ok); err != nil {
			t.Errorf("ValidateIdentifier(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "1abc", "a-b", "a.b", "drop table"} {
		if err := ValidateIdentifier(bad); err == nil {
			t.Errorf("ValidateIdentifier(%q) accepted", bad)
		}
	}
}
