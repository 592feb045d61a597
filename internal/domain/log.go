package domain

import (
	"context"
	"time"
)

// Suggested categories. Category is free text.
const (
	CategoryBreakfast = "Breakfast"
	CategoryLunch     = "Lunch"
	CategoryDinner    = "Dinner"
	CategorySnack     = "Snack"
	CategoryAIPhoto   = "AI Photo"
	CategoryManual    = "Manual"
)

// LogEntry is one recorded meal or food event.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Item      string    `json:"item"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Category  string    `json:"category"`
}

// LogRepository is the port for the in-process meal log collection.
type LogRepository interface {
	AddLog(ctx context.Context, entry LogEntry) error
	DeleteLog(ctx context.Context, user, id string) (*LogEntry, error)
	ListLogs(ctx context.Context, user string) ([]LogEntry, error)
	ReplaceLogs(ctx context.Context, entries []LogEntry) error
}
