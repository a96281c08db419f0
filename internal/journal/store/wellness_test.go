package store

import (
	"context"
	"testing"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

func TestMoodSingletonPerDay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := &schema.Mood{Date: "2025-01-15", UserID: "alice", Rating: 6}
	if err := s.SaveMood(ctx, first); err != nil {
		t.Fatalf("SaveMood failed: %v", err)
	}

	// A second save for the same day replaces, not duplicates.
	second := &schema.Mood{Date: "2025-01-15", UserID: "alice", Rating: 8, Notes: "better now"}
	if err := s.SaveMood(ctx, second); err != nil {
		t.Fatalf("second SaveMood failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second save got id %s, want reuse of %s", second.ID, first.ID)
	}

	mood, err := s.GetMood(ctx, "2025-01-15", "alice")
	if err != nil {
		t.Fatalf("GetMood failed: %v", err)
	}
	if mood == nil || mood.Rating != 8 {
		t.Errorf("mood = %+v, want rating 8", mood)
	}

	var count int
	if err := s.db.RawDB().QueryRow("SELECT COUNT(*) FROM moods").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("moods table has %d rows, want 1", count)
	}
}

func TestMoodRatingValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveMood(ctx, &schema.Mood{Date: "2025-01-15", Rating: 0}); err == nil {
		t.Error("expected error for rating 0")
	}
	if err := s.SaveMood(ctx, &schema.Mood{Date: "2025-01-15", Rating: 11}); err == nil {
		t.Error("expected error for rating 11")
	}
}

func TestSleepPerUserOnSameDay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveSleep(ctx, &schema.Sleep{Date: "2025-01-15", UserID: "alice", Quality: 7, HoursSlept: 7.5}); err != nil {
		t.Fatalf("SaveSleep failed: %v", err)
	}
	if err := s.SaveSleep(ctx, &schema.Sleep{Date: "2025-01-15", UserID: "bob", Quality: 4, HoursSlept: 5}); err != nil {
		t.Fatalf("SaveSleep failed: %v", err)
	}

	alice, err := s.GetSleep(ctx, "2025-01-15", "alice")
	if err != nil {
		t.Fatalf("GetSleep failed: %v", err)
	}
	if alice == nil || alice.Quality != 7 {
		t.Errorf("alice sleep = %+v, want quality 7", alice)
	}

	if err := s.DeleteSleep(ctx, "2025-01-15", "alice"); err != nil {
		t.Fatalf("DeleteSleep failed: %v", err)
	}

	gone, err := s.GetSleep(ctx, "2025-01-15", "alice")
	if err != nil {
		t.Fatalf("GetSleep failed: %v", err)
	}
	if gone != nil {
		t.Error("alice's entry still present after delete")
	}

	bob, err := s.GetSleep(ctx, "2025-01-15", "bob")
	if err != nil {
		t.Fatalf("GetSleep failed: %v", err)
	}
	if bob == nil {
		t.Error("deleting alice's entry removed bob's")
	}
}

func TestJournalLinksDayRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	journal := &schema.DailyJournal{
		Date:    "2025-01-15",
		UserID:  "alice",
		TaskIDs: []string{"t1", "t2"},
		SleepID: "sl1",
	}
	if err := s.SaveJournal(ctx, journal); err != nil {
		t.Fatalf("SaveJournal failed: %v", err)
	}

	got, err := s.GetJournal(ctx, "2025-01-15", "alice")
	if err != nil {
		t.Fatalf("GetJournal failed: %v", err)
	}
	if got == nil {
		t.Fatal("journal not found")
	}
	if len(got.TaskIDs) != 2 || got.SleepID != "sl1" {
		t.Errorf("journal = %+v", got)
	}
	if got.ExpenseIDs == nil {
		t.Error("ExpenseIDs should be initialized, got nil")
	}

	none, err := s.GetJournal(ctx, "2025-01-15", "bob")
	if err != nil {
		t.Fatalf("GetJournal failed: %v", err)
	}
	if none != nil {
		t.Error("bob sees alice's journal")
	}
}
