package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// Mood and sleep are singletons per (date, user): at most one record each.
// Deletes are scoped by date+user and locate the record through the date
// index before removing it by id.

// GetMood returns the user's mood entry for a date, or nil.
func (s *Store) GetMood(ctx context.Context, date, userID string) (*schema.Mood, error) {
	userID = orDefault(userID)

	bodies, err := s.bodiesByDate(ctx, schema.StoreMoods, date)
	if err != nil {
		return nil, err
	}

	for _, body := range bodies {
		mood, _, err := schema.DecodeMood(body)
		if err != nil {
			s.log.Warnw("skipping undecodable mood record", "date", date, "error", err)
			continue
		}
		if mood.UserID == userID {
			return mood, nil
		}
	}
	return nil, nil
}

// SaveMood upserts the user's mood entry for its date. An existing entry
// for the same (date, user) is overwritten, keeping the singleton
// invariant.
func (s *Store) SaveMood(ctx context.Context, m *schema.Mood) error {
	if m.Date == "" {
		return fmt.Errorf("invalid mood record: date is required")
	}
	if m.Rating < 1 || m.Rating > 10 {
		return fmt.Errorf("invalid mood record: rating must be between 1 and 10 (got %g)", m.Rating)
	}
	if m.UserID == "" {
		m.UserID = schema.DefaultUserID
	}

	// Reuse the existing record's id so a second save for the same day
	// updates rather than duplicates.
	if m.ID == "" {
		existing, err := s.GetMood(ctx, m.Date, m.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			m.ID = existing.ID
		} else {
			m.ID = uuid.New().String()
		}
	}

	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}

	meta := schema.Meta{ID: m.ID, UserID: m.UserID, Date: m.Date, UpdatedAt: m.UpdatedAt}
	return s.saveRecord(ctx, schema.StoreMoods, m, meta)
}

// DeleteMood removes the user's mood entry for a date.
func (s *Store) DeleteMood(ctx context.Context, date, userID string) error {
	mood, err := s.GetMood(ctx, date, userID)
	if err != nil {
		return err
	}
	if mood == nil {
		return nil
	}
	return s.deleteByID(ctx, schema.StoreMoods, mood.ID)
}

// GetSleep returns the user's sleep entry for a date, or nil.
func (s *Store) GetSleep(ctx context.Context, date, userID string) (*schema.Sleep, error) {
	userID = orDefault(userID)

	bodies, err := s.bodiesByDate(ctx, schema.StoreSleep, date)
	if err != nil {
		return nil, err
	}

	for _, body := range bodies {
		sleep, _, err := schema.DecodeSleep(body)
		if err != nil {
			s.log.Warnw("skipping undecodable sleep record", "date", date, "error", err)
			continue
		}
		if sleep.UserID == userID {
			return sleep, nil
		}
	}
	return nil, nil
}

// SaveSleep upserts the user's sleep entry for its date.
func (s *Store) SaveSleep(ctx context.Context, entry *schema.Sleep) error {
	if entry.Date == "" {
		return fmt.Errorf("invalid sleep record: date is required")
	}
	if entry.Quality < 1 || entry.Quality > 10 {
		return fmt.Errorf("invalid sleep record: quality must be between 1 and 10 (got %d)", entry.Quality)
	}
	if entry.UserID == "" {
		entry.UserID = schema.DefaultUserID
	}

	if entry.ID == "" {
		existing, err := s.GetSleep(ctx, entry.Date, entry.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			entry.ID = existing.ID
		} else {
			entry.ID = uuid.New().String()
		}
	}

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}

	meta := schema.Meta{ID: entry.ID, UserID: entry.UserID, Date: entry.Date, UpdatedAt: entry.UpdatedAt}
	return s.saveRecord(ctx, schema.StoreSleep, entry, meta)
}

// DeleteSleep removes the user's sleep entry for a date.
func (s *Store) DeleteSleep(ctx context.Context, date, userID string) error {
	sleep, err := s.GetSleep(ctx, date, userID)
	if err != nil {
		return err
	}
	if sleep == nil {
		return nil
	}
	return s.deleteByID(ctx, schema.StoreSleep, sleep.ID)
}
