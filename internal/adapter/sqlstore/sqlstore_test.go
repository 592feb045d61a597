package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"caltrack/internal/domain"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), SQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	lite := &DB{driver: SQLite}
	if got := lite.q("a=$1 AND b=$2"); got != "a=? AND b=?" {
		t.Errorf("sqlite: got %q", got)
	}
	pg := &DB{driver: Postgres}
	if got := pg.q("a=$1"); got != "a=$1" {
		t.Errorf("postgres: got %q", got)
	}
}

func TestLogsRoundTrip(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	ts := time.Date(2024, 1, 5, 3, 0, 0, 0, time.UTC)
	a := domain.LogEntry{ID: "a", User: "wife", Item: "Ramen", Calories: 500, Protein: 20, Category: "Dinner", Timestamp: ts}
	b := domain.LogEntry{ID: "b", User: "husband", Item: "Spam musubi", Calories: 300, Protein: 9.5, Category: "Snack", Timestamp: ts.Add(-time.Hour)}

	for _, e := range []domain.LogEntry{a, b, a} {
		if err := db.AppendLog(ctx, e); err != nil {
			t.Fatalf("AppendLog: %v", err)
		}
	}

	logs, err := db.ListLogs(ctx)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].ID != "b" || logs[1].ID != "a" {
		t.Errorf("expected oldest first, got %s, %s", logs[0].ID, logs[1].ID)
	}
	if !logs[1].Timestamp.Equal(ts) || logs[1].Protein != 20 || logs[1].Category != "Dinner" {
		t.Errorf("unexpected round trip %+v", logs[1])
	}

	if err := db.DeleteLog(ctx, a); err != nil {
		t.Fatalf("DeleteLog: %v", err)
	}
	// Deleting again is harmless
	if err := db.DeleteLog(ctx, a); err != nil {
		t.Fatalf("DeleteLog again: %v", err)
	}
	logs, _ = db.ListLogs(ctx)
	if len(logs) != 1 || logs[0].ID != "b" {
		t.Errorf("expected only b left, got %v", logs)
	}
}

func TestWeightsKeepInsertOrder(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	_ = db.AppendWeight(ctx, domain.WeightEntry{User: "husband", Day: "2024-03-02", Value: 181, Unit: "lb", CreatedAt: now})
	_ = db.AppendWeight(ctx, domain.WeightEntry{User: "husband", Day: "2024-03-01", Value: 183, Unit: "lb", CreatedAt: now.Add(time.Minute)})

	ws, err := db.ListWeights(ctx)
	if err != nil {
		t.Fatalf("ListWeights: %v", err)
	}
	if len(ws) != 2 || ws[0].Value != 181 || ws[1].Day != "2024-03-01" {
		t.Errorf("expected insert order, got %v", ws)
	}

	if err := db.AppendWeight(ctx, domain.WeightEntry{User: "wife", Day: "2024-03-02", Value: 1, Unit: "stone"}); err == nil {
		t.Error("expected unit check to reject stone")
	}
}

func TestOpen_FileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "caltrack.db")
	db, err := Open(context.Background(), SQLite, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	_ = db.AppendLog(ctx, domain.LogEntry{ID: "x", User: "wife", Timestamp: time.Now()})
	_ = db.Close()

	// Reopening keeps data and re-runs migrations cleanly
	db, err = Open(ctx, SQLite, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	logs, _ := db.ListLogs(ctx)
	if len(logs) != 1 {
		t.Errorf("expected persisted log, got %d", len(logs))
	}
}
