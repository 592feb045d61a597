package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"caltrack/internal/domain"

	"github.com/charmbracelet/log"
)

// DefaultWriteTimeout bounds a single ledger write-through.
const DefaultWriteTimeout = 10 * time.Second

// LogStore owns the in-process meal log and weight collections and mirrors
// every mutation to an optional ledger. The in-memory view is the source of
// truth. Ledger writes are attempted once, in mutation order, and their
// failures are logged and dropped.
type LogStore struct {
	mu      sync.Mutex
	logs    domain.LogRepository
	weights domain.WeightRepository
	ledger  domain.Ledger
	logger  *log.Logger
	timeout time.Duration

	// tail is closed once the most recently scheduled write-through is done.
	tail    chan struct{}
	pending sync.WaitGroup
}

// NewLogStore creates a store. ledger may be nil for memory-only operation.
func NewLogStore(logs domain.LogRepository, weights domain.WeightRepository, ledger domain.Ledger, logger *log.Logger) *LogStore {
	return &LogStore{
		logs:    logs,
		weights: weights,
		ledger:  ledger,
		logger:  logger,
		timeout: DefaultWriteTimeout,
	}
}

// WithWriteTimeout overrides the per-write ledger timeout.
func (s *LogStore) WithWriteTimeout(d time.Duration) *LogStore {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Durable reports whether a ledger is attached.
func (s *LogStore) Durable() bool {
	return s.ledger != nil
}

// Load replaces the in-memory collections with the ledger's contents.
// On any failure the collections are left untouched.
func (s *LogStore) Load(ctx context.Context) error {
	if s.ledger == nil {
		return nil
	}
	logs, err := s.ledger.ListLogs(ctx)
	if err != nil {
		s.logger.Error("load logs from ledger", "err", err)
		return fmt.Errorf("load logs: %w", err)
	}
	weights, err := s.ledger.ListWeights(ctx)
	if err != nil {
		s.logger.Error("load weights from ledger", "err", err)
		return fmt.Errorf("load weights: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.logs.ReplaceLogs(ctx, logs); err != nil {
		return err
	}
	if err := s.weights.ReplaceWeights(ctx, weights); err != nil {
		return err
	}
	s.logger.Info("loaded history from ledger", "logs", len(logs), "weights", len(weights))
	return nil
}

// Append stores a log entry and schedules its write-through.
func (s *LogStore) Append(ctx context.Context, entry domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.logs.AddLog(ctx, entry); err != nil {
		return err
	}
	s.writeThrough("append log", entry.ID, func(ctx context.Context, l domain.Ledger) error {
		return l.AppendLog(ctx, entry)
	})
	return nil
}

// DeleteByID removes a user's entry. Unknown ids are a no-op and report false.
func (s *LogStore) DeleteByID(ctx context.Context, user, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.logs.DeleteLog(ctx, user, id)
	if err != nil {
		return false, err
	}
	if removed == nil {
		return false, nil
	}
	entry := *removed
	s.writeThrough("delete log", id, func(ctx context.Context, l domain.Ledger) error {
		return l.DeleteLog(ctx, entry)
	})
	return true, nil
}

// EntriesForUser returns a user's log entries, oldest first.
func (s *LogStore) EntriesForUser(ctx context.Context, user string) ([]domain.LogEntry, error) {
	return s.logs.ListLogs(ctx, user)
}

// AppendWeight stores a weight entry and schedules its write-through.
func (s *LogStore) AppendWeight(ctx context.Context, entry domain.WeightEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.weights.AddWeight(ctx, entry); err != nil {
		return err
	}
	s.writeThrough("append weight", entry.Day, func(ctx context.Context, l domain.Ledger) error {
		return l.AppendWeight(ctx, entry)
	})
	return nil
}

// LastWeight returns the most recently appended weight for a user, or nil.
func (s *LogStore) LastWeight(ctx context.Context, user string) (*domain.WeightEntry, error) {
	return s.weights.LatestWeight(ctx, user)
}

// WeightsForUser returns a user's weights in append order.
func (s *LogStore) WeightsForUser(ctx context.Context, user string) ([]domain.WeightEntry, error) {
	return s.weights.ListWeights(ctx, user)
}

// Close waits for scheduled write-throughs to finish.
func (s *LogStore) Close() {
	s.pending.Wait()
}

// writeThrough runs fn against the ledger in the background, after every
// previously scheduled write. Callers must hold s.mu.
func (s *LogStore) writeThrough(op, key string, fn func(context.Context, domain.Ledger) error) {
	if s.ledger == nil {
		return
	}
	prev := s.tail
	done := make(chan struct{})
	s.tail = done
	s.pending.Add(1)

	go func() {
		defer s.pending.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx, s.ledger); err != nil {
			s.logger.Error("ledger write failed", "op", op, "key", key, "err", err)
			return
		}
		s.logger.Debug("ledger write", "op", op, "key", key, "took", time.Since(start))
	}()
}
