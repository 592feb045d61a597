package app

import (
	"context"
	"math"
	"strings"
	"time"

	"caltrack/internal/domain"
)

const defaultManualItem = "Manual Entry"

// LogService encapsulates manual logging and deletion use cases.
type LogService struct {
	store  *LogStore
	roster *domain.Roster
	now    func() time.Time
}

// NewLogService creates a LogService backed by the given store.
func NewLogService(store *LogStore, roster *domain.Roster) *LogService {
	return &LogService{store: store, roster: roster, now: time.Now}
}

// WithClock replaces the time source.
func (s *LogService) WithClock(now func() time.Time) *LogService {
	s.now = now
	return s
}

// ManualInput is a hand-entered log entry. Zero values take defaults.
type ManualInput struct {
	User     string
	Item     string
	Calories float64
	Protein  float64
	Category string
	// Date optionally back-dates the entry (YYYY-MM-DD, user's zone).
	Date string
}

// LogManual validates and stores a hand-entered entry.
func (s *LogService) LogManual(ctx context.Context, in ManualInput) (*domain.LogEntry, error) {
	u, err := resolveUser(s.roster, in.User)
	if err != nil {
		return nil, err
	}
	if in.Calories < 0 || math.IsNaN(in.Calories) || math.IsInf(in.Calories, 0) {
		return nil, invalid("calories", "must be >= 0")
	}
	if in.Protein < 0 || math.IsNaN(in.Protein) || math.IsInf(in.Protein, 0) {
		return nil, invalid("protein", "must be >= 0")
	}

	now := s.now()
	ts := now
	if day := strings.TrimSpace(in.Date); day != "" && day != domain.DayKey(now, u) {
		noon, err := domain.NoonOf(day, u)
		if err != nil {
			return nil, invalid("date", "must be YYYY-MM-DD")
		}
		if day > domain.DayKey(now, u) {
			return nil, invalid("date", "cannot be in the future")
		}
		ts = noon
	}

	item := strings.TrimSpace(in.Item)
	if item == "" {
		item = defaultManualItem
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = domain.CategorySnack
	}

	entry := domain.LogEntry{
		ID:        newID(),
		Timestamp: ts,
		User:      u.ID,
		Item:      item,
		Calories:  in.Calories,
		Protein:   in.Protein,
		Category:  category,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes a user's entry by id. Unknown ids are not an error.
func (s *LogService) Delete(ctx context.Context, userID, id string) (bool, error) {
	u, err := resolveUser(s.roster, userID)
	if err != nil {
		return false, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, invalid("id", "required")
	}
	return s.store.DeleteByID(ctx, u.ID, id)
}
