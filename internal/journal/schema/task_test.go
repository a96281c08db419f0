package schema

import (
	"testing"
	"time"
)

func TestDecodeTaskCurrentShape(t *testing.T) {
	body := []byte(`{
		"id": "t1",
		"userId": "alice",
		"date": "2025-01-15",
		"title": "write report",
		"status": "todo",
		"spentTime": 45,
		"timeLogs": [{"id": "l1", "type": "manual", "minutes": 45, "createdAt": "2025-01-15T10:00:00Z"}]
	}`)

	task, legacy, err := DecodeTask(body)
	if err != nil {
		t.Fatalf("DecodeTask failed: %v", err)
	}
	if legacy {
		t.Error("current-shape record reported as legacy")
	}
	if task.UserID != "alice" {
		t.Errorf("UserID = %q, want alice", task.UserID)
	}
	if task.SpentTime != 45 {
		t.Errorf("SpentTime = %d, want 45", task.SpentTime)
	}
	if len(task.TimeLogs) != 1 {
		t.Errorf("TimeLogs length = %d, want 1", len(task.TimeLogs))
	}
}

func TestDecodeTaskLegacyShape(t *testing.T) {
	// Pre-multi-user record: no userId, accumulatedTime instead of spentTime.
	body := []byte(`{
		"id": "t2",
		"date": "2025-01-15",
		"title": "old task",
		"status": "done",
		"accumulatedTime": 90
	}`)

	task, legacy, err := DecodeTask(body)
	if err != nil {
		t.Fatalf("DecodeTask failed: %v", err)
	}
	if !legacy {
		t.Error("legacy record not reported as legacy")
	}
	if task.UserID != DefaultUserID {
		t.Errorf("UserID = %q, want %q", task.UserID, DefaultUserID)
	}
	if task.SpentTime != 90 {
		t.Errorf("SpentTime = %d, want 90 (folded from accumulatedTime)", task.SpentTime)
	}
	if task.TimeLogs == nil {
		t.Error("TimeLogs should be initialized, got nil")
	}
}

func TestDecodeTaskSpentTimeWins(t *testing.T) {
	// Both fields present: the current field is authoritative.
	body := []byte(`{
		"id": "t3",
		"userId": "alice",
		"date": "2025-01-15",
		"title": "both fields",
		"status": "todo",
		"spentTime": 30,
		"accumulatedTime": 90
	}`)

	task, _, err := DecodeTask(body)
	if err != nil {
		t.Fatalf("DecodeTask failed: %v", err)
	}
	if task.SpentTime != 30 {
		t.Errorf("SpentTime = %d, want 30", task.SpentTime)
	}
}

func TestDecodeTaskMalformed(t *testing.T) {
	if _, _, err := DecodeTask([]byte(`{"id": `)); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestTaskValidate(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr bool
	}{
		{"valid", func(t *Task) {}, false},
		{"missing title", func(t *Task) { t.Title = "" }, true},
		{"missing date", func(t *Task) { t.Date = "" }, true},
		{"bad status", func(t *Task) { t.Status = "paused" }, true},
		{"negative time", func(t *Task) { t.SpentTime = -1 }, true},
		{"timer without start", func(t *Task) { t.TimerRunning = true; t.TimerStart = nil }, true},
		{"timer with start", func(t *Task) { t.TimerRunning = true; t.TimerStart = &now }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{
				ID:     "t1",
				UserID: "alice",
				Date:   "2025-01-15",
				Title:  "task",
				Status: TaskStatusTodo,
			}
			tt.mutate(task)
			err := task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
