package domain_test

import (
	"testing"
	"time"

	"caltrack/internal/domain"
)

func mustUser(t *testing.T, id, tz string) domain.User {
	t.Helper()
	r, err := domain.NewRoster(domain.User{ID: id, Timezone: tz, DailyGoal: 2000})
	if err != nil {
		t.Fatalf("NewRoster: %v", err)
	}
	return r.Default()
}

func TestDayKey_SameCivilDate(t *testing.T) {
	u := mustUser(t, "a", "Asia/Tokyo")

	// 2024-01-05 00:30 and 23:30 in Tokyo straddle the UTC date change.
	t1 := time.Date(2024, 1, 4, 15, 30, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)

	if got := domain.DayKey(t1, u); got != "2024-01-05" {
		t.Fatalf("DayKey(t1) = %s; want 2024-01-05", got)
	}
	if domain.DayKey(t1, u) != domain.DayKey(t2, u) {
		t.Fatalf("expected same bucket, got %s and %s", domain.DayKey(t1, u), domain.DayKey(t2, u))
	}

	t3 := t2.Add(time.Hour) // 2024-01-06 00:30 Tokyo
	if domain.DayKey(t3, u) == domain.DayKey(t2, u) {
		t.Fatal("expected local midnight to split buckets")
	}
}

func TestDayKey_PerUserZone(t *testing.T) {
	hnl := mustUser(t, "h", "Pacific/Honolulu")
	tyo := mustUser(t, "w", "Asia/Tokyo")

	ts := time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)
	if got := domain.DayKey(ts, hnl); got != "2024-01-05" {
		t.Errorf("honolulu: got %s", got)
	}
	if got := domain.DayKey(ts, tyo); got != "2024-01-06" {
		t.Errorf("tokyo: got %s", got)
	}
}

func TestRollingWindowKeys(t *testing.T) {
	u := mustUser(t, "a", "Asia/Tokyo")
	ref := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC) // 2024-03-02 10:00 Tokyo

	keys := domain.RollingWindowKeys(ref, u, 7)
	want := []string{
		"2024-02-25", "2024-02-26", "2024-02-27", "2024-02-28",
		"2024-02-29", "2024-03-01", "2024-03-02",
	}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %s; want %s", i, keys[i], want[i])
		}
	}
	if keys[len(keys)-1] != domain.DayKey(ref, u) {
		t.Error("window must end on the reference day")
	}
}

func TestRollingWindowKeys_AcrossDST(t *testing.T) {
	u := mustUser(t, "ny", "America/New_York")
	// 2024-03-10 is the spring-forward day in New York.
	ref := time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)

	keys := domain.RollingWindowKeys(ref, u, 5)
	want := []string{"2024-03-08", "2024-03-09", "2024-03-10", "2024-03-11", "2024-03-12"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %s; want %s", i, keys[i], want[i])
		}
	}
}

func TestRollingWindowKeys_ZeroDays(t *testing.T) {
	u := mustUser(t, "a", "UTC")
	if keys := domain.RollingWindowKeys(time.Now(), u, 0); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestDayLabel(t *testing.T) {
	if got := domain.DayLabel("2024-01-05"); got != "Fri 1/5" {
		t.Errorf("DayLabel = %q; want %q", got, "Fri 1/5")
	}
	if got := domain.DayLabel("garbage"); got != "garbage" {
		t.Errorf("DayLabel(garbage) = %q", got)
	}
}

func TestNoonOf(t *testing.T) {
	u := mustUser(t, "a", "Asia/Tokyo")
	noon, err := domain.NoonOf("2024-01-05", u)
	if err != nil {
		t.Fatalf("NoonOf: %v", err)
	}
	if want := time.Date(2024, 1, 5, 3, 0, 0, 0, time.UTC); !noon.Equal(want) {
		t.Errorf("NoonOf = %v; want %v", noon, want)
	}
	if _, err := domain.NoonOf("01/05/2024", u); err == nil {
		t.Error("expected error for bad day key")
	}
}
