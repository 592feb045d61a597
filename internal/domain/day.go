package domain

import "time"

// DayLayout is the civil-date format used for day keys.
const DayLayout = "2006-01-02"

// DayKey returns the civil date of t in the user's timezone.
func DayKey(t time.Time, u User) string {
	return t.In(location(u)).Format(DayLayout)
}

// RollingWindowKeys returns days consecutive day keys, oldest first, ending
// with the day that contains ref.
func RollingWindowKeys(ref time.Time, u User, days int) []string {
	if days <= 0 {
		return []string{}
	}
	loc := location(u)
	y, m, d := ref.In(loc).Date()
	keys := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		// Noon never falls in a DST gap, so every civil day maps to exactly one key.
		keys = append(keys, time.Date(y, m, d-i, 12, 0, 0, 0, loc).Format(DayLayout))
	}
	return keys
}

// DayLabel renders a day key for chart axes, e.g. "Fri 1/5".
// Keys that do not parse are returned unchanged.
func DayLabel(key string) string {
	t, err := time.Parse(DayLayout, key)
	if err != nil {
		return key
	}
	return t.Format("Mon 1/2")
}

// NoonOf returns local noon of a day key in the user's timezone.
func NoonOf(key string, u User) (time.Time, error) {
	loc := location(u)
	t, err := time.ParseInLocation(DayLayout, key, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc), nil
}

func location(u User) *time.Location {
	if u.Location == nil {
		return time.UTC
	}
	return u.Location
}
