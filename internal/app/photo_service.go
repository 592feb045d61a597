package app

import (
	"context"
	"fmt"
	"time"

	"caltrack/internal/domain"

	"github.com/charmbracelet/log"
)

// ImageShrinker reduces a photo before it is sent to the vision model.
type ImageShrinker interface {
	Shrink(data []byte, mimeType string) ([]byte, string, error)
}

// PhotoService turns meal photos into log entries.
type PhotoService struct {
	store    *LogStore
	roster   *domain.Roster
	vision   domain.Vision
	shrinker ImageShrinker
	logger   *log.Logger
	now      func() time.Time
}

// NewPhotoService creates a PhotoService. vision may be nil when no model is
// configured, in which case every photo is rejected as unavailable. shrinker
// may be nil to send photos as uploaded.
func NewPhotoService(store *LogStore, roster *domain.Roster, vision domain.Vision, shrinker ImageShrinker, logger *log.Logger) *PhotoService {
	return &PhotoService{
		store:    store,
		roster:   roster,
		vision:   vision,
		shrinker: shrinker,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *PhotoService) WithClock(now func() time.Time) *PhotoService {
	s.now = now
	return s
}

// IngestPhoto estimates the meal in image and logs it for the user.
func (s *PhotoService) IngestPhoto(ctx context.Context, image []byte, mimeType, userID string) (*domain.LogEntry, error) {
	u, err := resolveUser(s.roster, userID)
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, invalid("image", "no photo uploaded")
	}
	if s.vision == nil {
		return nil, fmt.Errorf("%w: no vision model configured", ErrAIUnavailable)
	}

	payload, mime := image, mimeType
	if s.shrinker != nil {
		small, smallMime, err := s.shrinker.Shrink(image, mimeType)
		if err != nil {
			s.logger.Debug("sending photo unresized", "mime", mimeType, "err", err)
		} else {
			payload, mime = small, smallMime
		}
	}

	start := time.Now()
	text, err := s.vision.Describe(ctx, EstimatePrompt, payload, mime)
	if err != nil {
		s.logger.Error("vision request failed", "user", u.ID, "bytes", len(payload), "err", err)
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	s.logger.Debug("vision reply", "user", u.ID, "took", time.Since(start), "chars", len(text))

	est, err := ParseEstimate(text)
	if err != nil {
		s.logger.Warn("unusable vision reply", "user", u.ID, "reply", truncate(text, 200))
		return nil, err
	}

	entry := domain.LogEntry{
		ID:        newID(),
		Timestamp: s.now(),
		User:      u.ID,
		Item:      est.Item,
		Calories:  est.Calories,
		Protein:   est.Protein,
		Category:  domain.CategoryAIPhoto,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
