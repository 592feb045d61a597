package app

import (
	"context"
	"sort"
	"time"

	"caltrack/internal/domain"
)

const (
	// DefaultChartDays is the length of the calorie chart window.
	DefaultChartDays = 7
	// DefaultRecentLimit caps the recent log list.
	DefaultRecentLimit = 30
)

// StatsService builds a user's dashboard view from the log store.
type StatsService struct {
	store  *LogStore
	roster *domain.Roster
	now    func() time.Time
	days   int
	recent int
}

// NewStatsService creates a StatsService over the given store and roster.
func NewStatsService(store *LogStore, roster *domain.Roster) *StatsService {
	return &StatsService{
		store:  store,
		roster: roster,
		now:    time.Now,
		days:   DefaultChartDays,
		recent: DefaultRecentLimit,
	}
}

// WithClock replaces the time source.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// WithLimits overrides the chart window and the recent list cap.
// Non-positive values keep the current setting.
func (s *StatsService) WithLimits(days, recent int) *StatsService {
	if days > 0 {
		s.days = days
	}
	if recent > 0 {
		s.recent = recent
	}
	return s
}

// Stats is the dashboard payload for one user.
type Stats struct {
	User          string            `json:"user"`
	Today         string            `json:"today"`
	TotalCals     float64           `json:"totalCals"`
	TotalProtein  float64           `json:"totalProtein"`
	LastWeight    *float64          `json:"lastWeight"`
	WeightUnit    string            `json:"weightUnit"`
	RecentLogs    []domain.LogEntry `json:"recentLogs"`
	ChartData     ChartSeries       `json:"chartData"`
	WeightHistory []WeightPoint     `json:"weightHistory"`
	Goal          int               `json:"goal"`
	Timezone      string            `json:"timezone"`
}

// ChartSeries holds per-day calorie totals, oldest day first.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Days   []string  `json:"days"`
}

// WeightPoint is one weight measurement keyed by local day.
type WeightPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// GetStats returns today's totals, the recent log list, the rolling calorie
// chart and the weight history for a user.
func (s *StatsService) GetStats(ctx context.Context, userID string) (*Stats, error) {
	u, err := resolveUser(s.roster, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.EntriesForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	weights, err := s.store.WeightsForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	last, err := s.store.LastWeight(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := domain.DayKey(now, u)
	keys := domain.RollingWindowKeys(now, u, s.days)

	chart := ChartSeries{
		Labels: make([]string, len(keys)),
		Values: make([]float64, len(keys)),
		Days:   keys,
	}
	slot := make(map[string]int, len(keys))
	for i, k := range keys {
		chart.Labels[i] = domain.DayLabel(k)
		slot[k] = i
	}

	stats := &Stats{
		User:       u.ID,
		Today:      today,
		WeightUnit: u.WeightUnit,
		Goal:       u.DailyGoal,
		Timezone:   u.Timezone,
		ChartData:  chart,
	}

	for _, e := range entries {
		day := domain.DayKey(e.Timestamp, u)
		if day == today {
			stats.TotalCals += e.Calories
			stats.TotalProtein += e.Protein
		}
		if i, ok := slot[day]; ok {
			chart.Values[i] += e.Calories
		}
	}

	recent := make([]domain.LogEntry, len(entries))
	copy(recent, entries)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > s.recent {
		recent = recent[:s.recent]
	}
	stats.RecentLogs = recent

	if last != nil {
		v := last.Value
		stats.LastWeight = &v
	}
	stats.WeightHistory = make([]WeightPoint, 0, len(weights))
	for _, w := range weights {
		stats.WeightHistory = append(stats.WeightHistory, WeightPoint{X: w.Day, Y: w.Value})
	}
	return stats, nil
}
