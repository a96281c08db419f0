package store

import (
	"context"
	"testing"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

func TestTotalExpensesPerUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, e := range []*schema.Expense{
		{Title: "coffee", Amount: 4.5, Date: "2025-01-15", UserID: "alice"},
		{Title: "lunch", Amount: 12, Date: "2025-01-15", UserID: "alice"},
		{Title: "taxi", Amount: 30, Date: "2025-01-15", UserID: "bob"},
		{Title: "yesterday", Amount: 100, Date: "2025-01-14", UserID: "alice"},
	} {
		if err := s.SaveExpense(ctx, e); err != nil {
			t.Fatalf("SaveExpense failed: %v", err)
		}
	}

	total, err := s.TotalExpenses(ctx, "2025-01-15", "alice")
	if err != nil {
		t.Fatalf("TotalExpenses failed: %v", err)
	}
	if total != 16.5 {
		t.Errorf("total = %g, want 16.5", total)
	}

	empty, err := s.TotalExpenses(ctx, "2025-01-16", "alice")
	if err != nil {
		t.Fatalf("TotalExpenses failed: %v", err)
	}
	if empty != 0 {
		t.Errorf("total for empty day = %g, want 0", empty)
	}
}

func TestSaveExpenseValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveExpense(ctx, &schema.Expense{Amount: 5, Date: "2025-01-15"}); err == nil {
		t.Error("expected error for missing title")
	}
	if err := s.SaveExpense(ctx, &schema.Expense{Title: "x", Amount: 5}); err == nil {
		t.Error("expected error for missing date")
	}
}

func TestLegacyExpenseSurfacesToDefaultUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	insertRaw(t, s, "expenses", "e-old", "", "2025-01-15",
		`{"id": "e-old", "date": "2025-01-15", "title": "groceries", "amount": 42}`)

	total, err := s.TotalExpenses(ctx, "2025-01-15", "")
	if err != nil {
		t.Fatalf("TotalExpenses failed: %v", err)
	}
	if total != 42 {
		t.Errorf("total = %g, want 42", total)
	}
}
