// Package domain contains the core business entities and interfaces.
package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // roster zones must resolve on hosts without zoneinfo
)

// DefaultRoster is the household the app was built for.
const DefaultRoster = "husband=Pacific/Honolulu:4000:lb,wife=Asia/Tokyo:2000:kg"

// User is one statically configured person tracked by the app.
type User struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Timezone   string         `json:"timezone"`
	DailyGoal  int            `json:"goal"`
	WeightUnit string         `json:"unit"`
	Location   *time.Location `json:"-"`
}

// Roster is the fixed set of users, keyed by lower-cased id.
type Roster struct {
	order []string
	byID  map[string]User
}

// NewRoster validates users and builds a roster. The first user is the default.
func NewRoster(users ...User) (*Roster, error) {
	if len(users) == 0 {
		return nil, errors.New("roster needs at least one user")
	}
	r := &Roster{byID: make(map[string]User, len(users))}
	for _, u := range users {
		id := strings.ToLower(strings.TrimSpace(u.ID))
		if id == "" {
			return nil, errors.New("user id must not be empty")
		}
		if _, dup := r.byID[id]; dup {
			return nil, fmt.Errorf("duplicate user %q", id)
		}
		if u.Location == nil {
			loc, err := time.LoadLocation(u.Timezone)
			if err != nil {
				return nil, fmt.Errorf("user %q: %w", id, err)
			}
			u.Location = loc
		}
		if u.Timezone == "" {
			u.Timezone = u.Location.String()
		}
		if u.DailyGoal <= 0 {
			return nil, fmt.Errorf("user %q: goal must be > 0", id)
		}
		if u.WeightUnit == "" {
			u.WeightUnit = "kg"
		}
		if !ValidUnit(u.WeightUnit) {
			return nil, fmt.Errorf("user %q: unit must be \"kg\" or \"lb\"", id)
		}
		if u.Name == "" {
			u.Name = titleCase(id)
		}
		u.ID = id
		r.byID[id] = u
		r.order = append(r.order, id)
	}
	return r, nil
}

// ParseRoster reads a roster from "id=Zone/Name:goal[:unit],..." form.
func ParseRoster(raw string) (*Roster, error) {
	var users []User
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, rest, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("roster entry %q: want id=zone:goal", part)
		}
		fields := strings.Split(rest, ":")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, fmt.Errorf("roster entry %q: want id=zone:goal[:unit]", part)
		}
		goal, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("roster entry %q: bad goal: %w", part, err)
		}
		u := User{ID: id, Timezone: fields[0], DailyGoal: goal}
		if len(fields) == 3 {
			u.WeightUnit = fields[2]
		}
		users = append(users, u)
	}
	return NewRoster(users...)
}

// Lookup finds a user by id, ignoring case.
func (r *Roster) Lookup(id string) (User, bool) {
	u, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	return u, ok
}

// Default returns the first configured user.
func (r *Roster) Default() User {
	return r.byID[r.order[0]]
}

// All returns users in configuration order.
func (r *Roster) All() []User {
	out := make([]User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
