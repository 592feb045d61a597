package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"caltrack/internal/app"
	"caltrack/internal/domain"
)

func testRoster(t *testing.T) *domain.Roster {
	t.Helper()
	r, err := domain.ParseRoster(domain.DefaultRoster)
	if err != nil {
		t.Fatalf("ParseRoster: %v", err)
	}
	return r
}

func tokyo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return loc
}

func TestGetStats_Empty(t *testing.T) {
	store := newStore(nil)
	svc := app.NewStatsService(store, testRoster(t))

	stats, err := svc.GetStats(context.Background(), "wife")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCals != 0 || stats.TotalProtein != 0 {
		t.Errorf("expected zero totals, got %v/%v", stats.TotalCals, stats.TotalProtein)
	}
	if stats.RecentLogs == nil || len(stats.RecentLogs) != 0 {
		t.Errorf("expected empty non-nil recent list, got %v", stats.RecentLogs)
	}
	if len(stats.ChartData.Values) != app.DefaultChartDays {
		t.Fatalf("expected %d chart values, got %d", app.DefaultChartDays, len(stats.ChartData.Values))
	}
	for i, v := range stats.ChartData.Values {
		if v != 0 {
			t.Errorf("chart[%d]: expected 0, got %v", i, v)
		}
	}
	if stats.LastWeight != nil {
		t.Errorf("expected nil last weight, got %v", *stats.LastWeight)
	}
	if stats.Goal != 2000 || stats.Timezone != "Asia/Tokyo" {
		t.Errorf("unexpected profile: goal=%d tz=%s", stats.Goal, stats.Timezone)
	}
}

func TestGetStats_UnknownUser(t *testing.T) {
	svc := app.NewStatsService(newStore(nil), testRoster(t))
	_, err := svc.GetStats(context.Background(), "cousin")
	if !app.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetStats_TodayInUserZone(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2024, 1, 5, 18, 0, 0, 0, loc)
	store := newStore(nil)
	ctx := context.Background()

	// 00:30 Tokyo on Jan 5 is still Jan 4 in UTC; it counts for today.
	_ = store.Append(ctx, domain.LogEntry{ID: "a", User: "wife", Item: "Ramen", Calories: 500, Protein: 20,
		Timestamp: time.Date(2024, 1, 5, 0, 30, 0, 0, loc)})
	// Yesterday evening in Tokyo.
	_ = store.Append(ctx, domain.LogEntry{ID: "b", User: "wife", Item: "Sushi", Calories: 300, Protein: 25,
		Timestamp: time.Date(2024, 1, 4, 23, 59, 0, 0, loc)})
	// Outside the window.
	_ = store.Append(ctx, domain.LogEntry{ID: "c", User: "wife", Item: "Cake", Calories: 900,
		Timestamp: time.Date(2023, 12, 20, 12, 0, 0, 0, loc)})
	// Another user.
	_ = store.Append(ctx, domain.LogEntry{ID: "d", User: "husband", Item: "Poke", Calories: 700,
		Timestamp: now})

	svc := app.NewStatsService(store, testRoster(t)).WithClock(func() time.Time { return now })
	stats, err := svc.GetStats(ctx, "wife")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalCals != 500 || stats.TotalProtein != 20 {
		t.Errorf("expected 500/20, got %v/%v", stats.TotalCals, stats.TotalProtein)
	}
	if stats.Today != "2024-01-05" {
		t.Errorf("expected today 2024-01-05, got %s", stats.Today)
	}

	values := stats.ChartData.Values
	if values[6] != 500 || values[5] != 300 {
		t.Errorf("expected trailing values 300, 500; got %v", values)
	}
	if stats.ChartData.Labels[6] != "Fri 1/5" {
		t.Errorf("expected last label Fri 1/5, got %s", stats.ChartData.Labels[6])
	}
	if stats.ChartData.Days[0] != "2023-12-30" {
		t.Errorf("expected window to start 2023-12-30, got %s", stats.ChartData.Days[0])
	}

	if len(stats.RecentLogs) != 3 {
		t.Fatalf("expected 3 recent logs, got %d", len(stats.RecentLogs))
	}
	if stats.RecentLogs[0].ID != "a" || stats.RecentLogs[2].ID != "c" {
		t.Errorf("expected newest first, got %s..%s", stats.RecentLogs[0].ID, stats.RecentLogs[2].ID)
	}
}

func TestGetStats_RecentCapped(t *testing.T) {
	store := newStore(nil)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		_ = store.Append(ctx, domain.LogEntry{ID: fmt.Sprint(i), User: "husband", Calories: 1,
			Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}

	svc := app.NewStatsService(store, testRoster(t))
	stats, err := svc.GetStats(ctx, "husband")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.RecentLogs) != app.DefaultRecentLimit {
		t.Fatalf("expected %d recent logs, got %d", app.DefaultRecentLimit, len(stats.RecentLogs))
	}
	if stats.RecentLogs[0].ID != "39" {
		t.Errorf("expected newest entry 39 first, got %s", stats.RecentLogs[0].ID)
	}

	svc.WithLimits(3, 5)
	stats, _ = svc.GetStats(ctx, "husband")
	if len(stats.RecentLogs) != 5 || len(stats.ChartData.Values) != 3 {
		t.Errorf("expected 5 recent and 3 chart days, got %d and %d", len(stats.RecentLogs), len(stats.ChartData.Values))
	}
}

func TestGetStats_Weights(t *testing.T) {
	store := newStore(nil)
	ctx := context.Background()
	_ = store.AppendWeight(ctx, domain.WeightEntry{User: "husband", Day: "2024-03-02", Value: 181, Unit: "lb"})
	_ = store.AppendWeight(ctx, domain.WeightEntry{User: "husband", Day: "2024-03-01", Value: 183, Unit: "lb"})

	svc := app.NewStatsService(store, testRoster(t))
	stats, err := svc.GetStats(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.User != "husband" {
		t.Errorf("expected default user husband, got %s", stats.User)
	}
	if stats.LastWeight == nil || *stats.LastWeight != 183 {
		t.Errorf("expected last weight 183, got %v", stats.LastWeight)
	}
	if len(stats.WeightHistory) != 2 || stats.WeightHistory[0].X != "2024-03-02" {
		t.Errorf("expected history in append order, got %v", stats.WeightHistory)
	}
}
