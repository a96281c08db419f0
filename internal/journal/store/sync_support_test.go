package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

func TestModifiedSinceFiltersByTime(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cutoff := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	old := &schema.Task{Title: "old", Date: "2025-01-15", UserID: "alice",
		CreatedAt: cutoff.Add(-2 * time.Hour), UpdatedAt: cutoff.Add(-time.Hour)}
	fresh := &schema.Task{Title: "fresh", Date: "2025-01-15", UserID: "alice",
		CreatedAt: cutoff, UpdatedAt: cutoff.Add(time.Hour)}
	for _, task := range []*schema.Task{old, fresh} {
		if err := s.SaveTask(ctx, task); err != nil {
			t.Fatalf("SaveTask failed: %v", err)
		}
	}

	records, err := s.ModifiedSince(ctx, "tasks", "alice", cutoff)
	if err != nil {
		t.Fatalf("ModifiedSince failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].ID != fresh.ID {
		t.Errorf("record = %s, want %s", records[0].ID, fresh.ID)
	}

	all, err := s.ModifiedSince(ctx, "tasks", "alice", time.Time{})
	if err != nil {
		t.Fatalf("ModifiedSince failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("zero since got %d records, want 2", len(all))
	}
}

func TestModifiedSinceIncludesLegacyForDefaultUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	insertRaw(t, s, "tasks", "legacy-sync", "", "2025-01-15",
		`{"id": "legacy-sync", "date": "2025-01-15", "title": "old", "status": "todo", "accumulatedTime": 10}`)

	records, err := s.ModifiedSince(ctx, "tasks", "default", time.Time{})
	if err != nil {
		t.Fatalf("ModifiedSince failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want the legacy row", len(records))
	}

	// The outgoing body is normalized.
	var out map[string]any
	if err := json.Unmarshal(records[0].Body, &out); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if out["userId"] != schema.DefaultUserID {
		t.Errorf("outgoing userId = %v, want %q", out["userId"], schema.DefaultUserID)
	}
	if out["spentTime"] != float64(10) {
		t.Errorf("outgoing spentTime = %v, want 10", out["spentTime"])
	}
}

func TestApplyRemoteLastWriteWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	local := &schema.Task{Title: "local version", Date: "2025-01-15", UserID: "alice",
		CreatedAt: base, UpdatedAt: base}
	if err := s.SaveTask(ctx, local); err != nil {
		t.Fatalf("SaveTask failed: %v", err)
	}

	makeRemote := func(title string, at time.Time) Record {
		task := schema.Task{ID: local.ID, UserID: "alice", Date: "2025-01-15",
			Title: title, Status: schema.TaskStatusTodo, TimeLogs: []schema.TimeLog{},
			CreatedAt: base, UpdatedAt: at}
		body, err := json.Marshal(task)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		return Record{ID: task.ID, UpdatedAt: at, Body: body}
	}

	// Older remote loses.
	applied, conflicts, err := s.ApplyRemote(ctx, "tasks", []Record{makeRemote("stale remote", base.Add(-time.Hour))})
	if err != nil {
		t.Fatalf("ApplyRemote failed: %v", err)
	}
	if applied != 0 || conflicts != 1 {
		t.Errorf("applied=%d conflicts=%d, want 0/1", applied, conflicts)
	}

	kept, err := s.GetTaskByID(ctx, local.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if kept.Title != "local version" {
		t.Errorf("title = %q, stale remote overwrote local", kept.Title)
	}

	// Newer remote wins.
	applied, conflicts, err = s.ApplyRemote(ctx, "tasks", []Record{makeRemote("newer remote", base.Add(time.Hour))})
	if err != nil {
		t.Fatalf("ApplyRemote failed: %v", err)
	}
	if applied != 1 || conflicts != 0 {
		t.Errorf("applied=%d conflicts=%d, want 1/0", applied, conflicts)
	}

	replaced, err := s.GetTaskByID(ctx, local.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if replaced.Title != "newer remote" {
		t.Errorf("title = %q, want newer remote", replaced.Title)
	}
}

func TestApplyRemoteNewRecordAndBadRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	task := schema.Task{ID: "remote-1", UserID: "alice", Date: "2025-01-15",
		Title: "from server", Status: schema.TaskStatusTodo, TimeLogs: []schema.TimeLog{},
		CreatedAt: at, UpdatedAt: at}
	body, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	applied, conflicts, err := s.ApplyRemote(ctx, "tasks", []Record{
		{ID: "bad", UpdatedAt: at, Body: []byte(`{"id":`)},
		{ID: task.ID, UpdatedAt: at, Body: body},
	})
	if err != nil {
		t.Fatalf("ApplyRemote failed: %v", err)
	}
	if applied != 1 || conflicts != 0 {
		t.Errorf("applied=%d conflicts=%d, want 1/0 with bad record skipped", applied, conflicts)
	}

	got, err := s.GetTaskByID(ctx, "remote-1")
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got == nil || got.Title != "from server" {
		t.Errorf("task = %+v", got)
	}
}
