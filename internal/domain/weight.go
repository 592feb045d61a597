package domain

import (
	"context"
	"time"
)

// WeightEntry represents a single weight measurement.
type WeightEntry struct {
	User      string    `json:"user"`
	Day       string    `json:"day"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
}

// WeightRepository is the port for the in-process weight collection.
// Entries keep append order.
type WeightRepository interface {
	AddWeight(ctx context.Context, entry WeightEntry) error
	LatestWeight(ctx context.Context, user string) (*WeightEntry, error)
	ListWeights(ctx context.Context, user string) ([]WeightEntry, error)
	ReplaceWeights(ctx context.Context, entries []WeightEntry) error
}
