package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// GetCalendarNote returns the user's note for a calendar day, or nil.
func (s *Store) GetCalendarNote(ctx context.Context, date, userID string) (*schema.CalendarNote, error) {
	userID = orDefault(userID)

	bodies, err := s.bodiesByDate(ctx, schema.StoreCalendarNotes, date)
	if err != nil {
		return nil, err
	}

	for _, body := range bodies {
		note, _, err := schema.DecodeCalendarNote(body)
		if err != nil {
			s.log.Warnw("skipping undecodable calendar note", "date", date, "error", err)
			continue
		}
		if note.UserID == userID {
			return note, nil
		}
	}
	return nil, nil
}

// SaveCalendarNote upserts the note for its day, reusing an existing
// record's id so the day keeps a single note per user.
func (s *Store) SaveCalendarNote(ctx context.Context, n *schema.CalendarNote) error {
	if n.Date == "" {
		return fmt.Errorf("invalid calendar note: date is required")
	}
	if n.UserID == "" {
		n.UserID = schema.DefaultUserID
	}

	if n.ID == "" {
		existing, err := s.GetCalendarNote(ctx, n.Date, n.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			n.ID = existing.ID
		} else {
			n.ID = uuid.New().String()
		}
	}

	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = now
	}

	meta := schema.Meta{ID: n.ID, UserID: n.UserID, Date: n.Date, UpdatedAt: n.UpdatedAt}
	return s.saveRecord(ctx, schema.StoreCalendarNotes, n, meta)
}

// DeleteCalendarNote removes the user's note for a day.
func (s *Store) DeleteCalendarNote(ctx context.Context, date, userID string) error {
	note, err := s.GetCalendarNote(ctx, date, userID)
	if err != nil {
		return err
	}
	if note == nil {
		return nil
	}
	return s.deleteByID(ctx, schema.StoreCalendarNotes, note.ID)
}
