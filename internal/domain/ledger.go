package domain

import "context"

// Ledger is the port for durable storage behind the in-process collections.
// Writes to it are advisory: callers log failures and carry on.
type Ledger interface {
	AppendLog(ctx context.Context, entry LogEntry) error
	DeleteLog(ctx context.Context, entry LogEntry) error
	ListLogs(ctx context.Context) ([]LogEntry, error)
	AppendWeight(ctx context.Context, entry WeightEntry) error
	ListWeights(ctx context.Context) ([]WeightEntry, error)
}
