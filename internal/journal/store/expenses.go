package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// GetExpenses returns all expenses for a date owned by the user.
func (s *Store) GetExpenses(ctx context.Context, date, userID string) ([]*schema.Expense, error) {
	userID = orDefault(userID)

	bodies, err := s.bodiesByDate(ctx, schema.StoreExpenses, date)
	if err != nil {
		return nil, err
	}

	var expenses []*schema.Expense
	for _, body := range bodies {
		expense, _, err := schema.DecodeExpense(body)
		if err != nil {
			s.log.Warnw("skipping undecodable expense record", "date", date, "error", err)
			continue
		}
		if expense.UserID != userID {
			continue
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

// TotalExpenses returns the sum of a user's expenses for a date. The sum
// never includes another user's records.
func (s *Store) TotalExpenses(ctx context.Context, date, userID string) (float64, error) {
	expenses, err := s.GetExpenses(ctx, date, userID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total, nil
}

// SaveExpense upserts an expense.
func (s *Store) SaveExpense(ctx context.Context, e *schema.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.UserID == "" {
		e.UserID = schema.DefaultUserID
	}
	if e.Title == "" {
		return fmt.Errorf("invalid expense %s: title is required", e.ID)
	}
	if e.Date == "" {
		return fmt.Errorf("invalid expense %s: date is required", e.ID)
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}

	meta := schema.Meta{ID: e.ID, UserID: e.UserID, Date: e.Date, UpdatedAt: e.UpdatedAt}
	return s.saveRecord(ctx, schema.StoreExpenses, e, meta)
}

// DeleteExpense removes an expense by id.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	return s.deleteByID(ctx, schema.StoreExpenses, id)
}
