package app

import (
	"context"
	"math"
	"strings"
	"time"

	"caltrack/internal/domain"
)

// WeightService encapsulates weight-tracking use cases.
type WeightService struct {
	store  *LogStore
	roster *domain.Roster
	now    func() time.Time
}

// NewWeightService creates a WeightService backed by the given store.
func NewWeightService(store *LogStore, roster *domain.Roster) *WeightService {
	return &WeightService{store: store, roster: roster, now: time.Now}
}

// WithClock replaces the time source.
func (s *WeightService) WithClock(now func() time.Time) *WeightService {
	s.now = now
	return s
}

// RecordWeight validates and stores a measurement for today in the user's
// zone. A value given in another unit is converted to the user's unit.
func (s *WeightService) RecordWeight(ctx context.Context, userID string, value float64, unit string) (*domain.WeightEntry, error) {
	u, err := resolveUser(s.roster, userID)
	if err != nil {
		return nil, err
	}
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, invalid("weight", "must be > 0")
	}
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		unit = u.WeightUnit
	}
	if !domain.ValidUnit(unit) {
		return nil, invalid("unit", `must be "kg" or "lb"`)
	}
	if unit != u.WeightUnit {
		value = math.Round(domain.ConvertWeight(value, unit, u.WeightUnit)*10) / 10
	}

	now := s.now()
	entry := domain.WeightEntry{
		User:      u.ID,
		Day:       domain.DayKey(now, u),
		Value:     value,
		Unit:      u.WeightUnit,
		CreatedAt: now,
	}
	if err := s.store.AppendWeight(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// LastWeight returns the user's most recent measurement, or nil.
func (s *WeightService) LastWeight(ctx context.Context, userID string) (*domain.WeightEntry, error) {
	u, err := resolveUser(s.roster, userID)
	if err != nil {
		return nil, err
	}
	return s.store.LastWeight(ctx, u.ID)
}
