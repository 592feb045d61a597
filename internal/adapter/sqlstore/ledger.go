package sqlstore

import (
	"context"
	"time"

	"caltrack/internal/domain"
)

var _ domain.Ledger = (*DB)(nil)

// AppendLog inserts a log entry. Re-inserting an existing id is a no-op.
func (d *DB) AppendLog(ctx context.Context, e domain.LogEntry) error {
	_, err := d.sql.ExecContext(ctx, d.q(
		"INSERT INTO meal_logs(id, user_id, item, calories, protein, category, created_at_ms) VALUES($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING;"),
		e.ID, e.User, e.Item, e.Calories, e.Protein, e.Category, e.Timestamp.UnixMilli(),
	)
	return err
}

// DeleteLog removes the row with the entry's id.
func (d *DB) DeleteLog(ctx context.Context, e domain.LogEntry) error {
	_, err := d.sql.ExecContext(ctx, d.q("DELETE FROM meal_logs WHERE id=$1 AND user_id=$2;"), e.ID, e.User)
	return err
}

// ListLogs returns every log entry, oldest first.
func (d *DB) ListLogs(ctx context.Context) ([]domain.LogEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, user_id, item, calories, protein, category, created_at_ms FROM meal_logs ORDER BY created_at_ms, id;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		var ms int64
		if err := rows.Scan(&e.ID, &e.User, &e.Item, &e.Calories, &e.Protein, &e.Category, &ms); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ms).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// AppendWeight inserts a weight entry.
func (d *DB) AppendWeight(ctx context.Context, w domain.WeightEntry) error {
	_, err := d.sql.ExecContext(ctx, d.q(
		"INSERT INTO weights(user_id, day, value, unit, created_at_ms) VALUES($1, $2, $3, $4, $5);"),
		w.User, w.Day, w.Value, w.Unit, w.CreatedAt.UnixMilli(),
	)
	return err
}

// ListWeights returns every weight entry in insertion order.
func (d *DB) ListWeights(ctx context.Context) ([]domain.WeightEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT user_id, day, value, unit, created_at_ms FROM weights ORDER BY seq;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WeightEntry
	for rows.Next() {
		var w domain.WeightEntry
		var ms int64
		if err := rows.Scan(&w.User, &w.Day, &w.Value, &w.Unit, &ms); err != nil {
			return nil, err
		}
		w.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, w)
	}
	return out, rows.Err()
}
