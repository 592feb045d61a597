// Package memory implements the in-process meal log and weight collections.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"caltrack/internal/domain"
)

// DB holds log and weight entries for every user.
type DB struct {
	mu      sync.Mutex
	logs    map[string][]domain.LogEntry
	weights map[string][]domain.WeightEntry
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		logs:    make(map[string][]domain.LogEntry),
		weights: make(map[string][]domain.WeightEntry),
	}
}

// Ensure interfaces are met.
var _ domain.LogRepository = (*DB)(nil)
var _ domain.WeightRepository = (*DB)(nil)

func userKey(user string) string {
	return strings.ToLower(user)
}

// --- LogRepository ---

// AddLog appends a log entry. Ids must be unique per user.
func (db *DB) AddLog(ctx context.Context, entry domain.LogEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := userKey(entry.User)
	for _, e := range db.logs[key] {
		if e.ID == entry.ID {
			return fmt.Errorf("log entry %q already exists", entry.ID)
		}
	}
	db.logs[key] = append(db.logs[key], entry)
	return nil
}

// DeleteLog removes a user's entry by id and returns it.
// Returns nil, nil when there is nothing to delete.
func (db *DB) DeleteLog(ctx context.Context, user, id string) (*domain.LogEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := userKey(user)
	entries := db.logs[key]
	for i, e := range entries {
		if e.ID == id {
			removed := e
			db.logs[key] = append(entries[:i:i], entries[i+1:]...)
			return &removed, nil
		}
	}
	return nil, nil
}

// ListLogs returns a copy of a user's entries, oldest first.
func (db *DB) ListLogs(ctx context.Context, user string) ([]domain.LogEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.LogEntry, len(db.logs[userKey(user)]))
	copy(result, db.logs[userKey(user)])

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// ReplaceLogs swaps the whole collection, e.g. after hydrating from a ledger.
func (db *DB) ReplaceLogs(ctx context.Context, entries []domain.LogEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	logs := make(map[string][]domain.LogEntry)
	seen := make(map[string]bool)
	for _, e := range entries {
		key := userKey(e.User)
		if seen[key+"\x00"+e.ID] {
			continue
		}
		seen[key+"\x00"+e.ID] = true
		logs[key] = append(logs[key], e)
	}
	db.logs = logs
	return nil
}

// --- WeightRepository ---

// AddWeight appends a weight entry.
func (db *DB) AddWeight(ctx context.Context, entry domain.WeightEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	key := userKey(entry.User)
	db.weights[key] = append(db.weights[key], entry)
	return nil
}

// LatestWeight returns the most recently appended entry for a user, whatever
// its day. Returns nil, nil when the user has none.
func (db *DB) LatestWeight(ctx context.Context, user string) (*domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	ws := db.weights[userKey(user)]
	if len(ws) == 0 {
		return nil, nil
	}
	ret := ws[len(ws)-1]
	return &ret, nil
}

// ListWeights returns a user's weights in append order.
func (db *DB) ListWeights(ctx context.Context, user string) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.WeightEntry, len(db.weights[userKey(user)]))
	copy(result, db.weights[userKey(user)])
	return result, nil
}

// ReplaceWeights swaps the whole weight collection, keeping slice order.
func (db *DB) ReplaceWeights(ctx context.Context, entries []domain.WeightEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	weights := make(map[string][]domain.WeightEntry)
	for _, w := range entries {
		key := userKey(w.User)
		weights[key] = append(weights[key], w)
	}
	db.weights = weights
	return nil
}
