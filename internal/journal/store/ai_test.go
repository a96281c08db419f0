package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

func TestAIMessagesOrderedAndCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	session := &schema.AISession{Title: "planning", UserID: "alice"}
	if err := s.SaveAISession(ctx, session); err != nil {
		t.Fatalf("SaveAISession failed: %v", err)
	}

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	// Saved out of order on purpose.
	for _, m := range []*schema.AIMessage{
		{SessionID: session.ID, Role: "assistant", Content: "second", Timestamp: base.Add(time.Minute)},
		{SessionID: session.ID, Role: "user", Content: "first", Timestamp: base},
		{SessionID: session.ID, Role: "user", Content: "third", Timestamp: base.Add(2 * time.Minute)},
	} {
		if err := s.SaveAIMessage(ctx, m); err != nil {
			t.Fatalf("SaveAIMessage failed: %v", err)
		}
	}

	messages, err := s.GetAIMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetAIMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	for i, want := range []string{"first", "second", "third"} {
		if messages[i].Content != want {
			t.Errorf("message %d = %q, want %q", i, messages[i].Content, want)
		}
	}

	if err := s.DeleteAISession(ctx, session.ID); err != nil {
		t.Fatalf("DeleteAISession failed: %v", err)
	}

	left, err := s.GetAIMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetAIMessages failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("%d messages survived session delete", len(left))
	}
}

func TestAISessionsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		session := &schema.AISession{
			Title:     fmt.Sprintf("session %d", i),
			UserID:    "alice",
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.SaveAISession(ctx, session); err != nil {
			t.Fatalf("SaveAISession failed: %v", err)
		}
	}

	sessions, err := s.GetAISessions(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAISessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}
	if sessions[0].Title != "session 2" || sessions[2].Title != "session 0" {
		t.Errorf("sessions not newest-first: %q .. %q", sessions[0].Title, sessions[2].Title)
	}
}

func TestAIReportCapEvictsOldest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < schema.AIReportCap+3; i++ {
		report := &schema.AIReport{
			UserID:    "alice",
			PeriodKey: fmt.Sprintf("2025-%02d", i+1),
			Title:     fmt.Sprintf("report %d", i),
			Raw:       "text",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.SaveAIReport(ctx, report); err != nil {
			t.Fatalf("SaveAIReport failed: %v", err)
		}
	}

	reports, err := s.GetAIReports(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAIReports failed: %v", err)
	}
	if len(reports) != schema.AIReportCap {
		t.Fatalf("got %d reports, want %d", len(reports), schema.AIReportCap)
	}
	// Newest first; the oldest three were evicted.
	if reports[0].Title != fmt.Sprintf("report %d", schema.AIReportCap+2) {
		t.Errorf("newest = %q", reports[0].Title)
	}
	if reports[len(reports)-1].Title != "report 3" {
		t.Errorf("oldest kept = %q, want %q", reports[len(reports)-1].Title, "report 3")
	}
}

func TestAIReportCapPerUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < schema.AIReportCap; i++ {
		report := &schema.AIReport{
			UserID:    "alice",
			Title:     fmt.Sprintf("alice %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.SaveAIReport(ctx, report); err != nil {
			t.Fatalf("SaveAIReport failed: %v", err)
		}
	}
	if err := s.SaveAIReport(ctx, &schema.AIReport{UserID: "bob", Title: "bob 0", CreatedAt: base}); err != nil {
		t.Fatalf("SaveAIReport failed: %v", err)
	}

	alice, err := s.GetAIReports(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAIReports failed: %v", err)
	}
	if len(alice) != schema.AIReportCap {
		t.Errorf("alice has %d reports, want %d", len(alice), schema.AIReportCap)
	}

	bob, err := s.GetAIReports(ctx, "bob")
	if err != nil {
		t.Fatalf("GetAIReports failed: %v", err)
	}
	if len(bob) != 1 {
		t.Errorf("bob has %d reports, want 1 (cap is per user)", len(bob))
	}
}
