package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// GetJournal returns the user's daily journal for a date, or nil if none
// exists yet.
func (s *Store) GetJournal(ctx context.Context, date, userID string) (*schema.DailyJournal, error) {
	userID = orDefault(userID)

	bodies, err := s.bodiesByDate(ctx, schema.StoreJournals, date)
	if err != nil {
		return nil, err
	}

	for _, body := range bodies {
		journal, _, err := schema.DecodeJournal(body)
		if err != nil {
			s.log.Warnw("skipping undecodable journal record", "date", date, "error", err)
			continue
		}
		if journal.UserID == userID {
			return journal, nil
		}
	}
	return nil, nil
}

// SaveJournal upserts a daily journal, stamping updatedAt when the caller
// omitted it.
func (s *Store) SaveJournal(ctx context.Context, j *schema.DailyJournal) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if j.UserID == "" {
		j.UserID = schema.DefaultUserID
	}
	if j.Date == "" {
		return fmt.Errorf("invalid journal %s: date is required", j.ID)
	}
	if j.TaskIDs == nil {
		j.TaskIDs = []string{}
	}
	if j.ExpenseIDs == nil {
		j.ExpenseIDs = []string{}
	}
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = now
	}

	meta := schema.Meta{ID: j.ID, UserID: j.UserID, Date: j.Date, UpdatedAt: j.UpdatedAt}
	return s.saveRecord(ctx, schema.StoreJournals, j, meta)
}

// DeleteJournal removes the user's journal for a date. Locates the record
// by the date index first; a missing journal is a no-op.
func (s *Store) DeleteJournal(ctx context.Context, date, userID string) error {
	journal, err := s.GetJournal(ctx, date, userID)
	if err != nil {
		return err
	}
	if journal == nil {
		return nil
	}
	return s.deleteByID(ctx, schema.StoreJournals, journal.ID)
}
