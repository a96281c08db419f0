// Package schema provides the record types persisted in the journal database.
//
// Every record is stored as a JSON document. Records written before the
// multi-user schema lack a userId and may carry legacy field names; each
// type has a Decode function that parses both shapes into the current one
// and reports whether the stored form needs rewriting. All migration and
// repository code operates on these typed records, never on raw maps.
package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultUserID is the implicit owner assigned to records that predate
// multi-user support.
const DefaultUserID = "default"

// Task statuses.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"
)

// Time log entry types.
const (
	TimeLogManual = "manual"
	TimeLogTimer  = "timer"
)

// TimeLog is one entry in a task's append-only time audit trail.
type TimeLog struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // manual or timer
	Minutes   int       `json:"minutes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a daily task with time tracking.
//
// SpentTime is the single source of truth for accumulated minutes; TimeLogs
// records how each minute got there. If TimerRunning is true, TimerStart is
// non-nil. Stopping a timer appends exactly one timer TimeLog and rolls the
// elapsed minutes into SpentTime.
type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Date          string     `json:"date"` // YYYY-MM-DD
	Title         string     `json:"title"`
	Status        string     `json:"status"` // todo, in-progress, done
	SpentTime     int        `json:"spentTime"`
	TimeLogs      []TimeLog  `json:"timeLogs"`
	TimerRunning  bool       `json:"timerRunning"`
	TimerStart    *time.Time `json:"timerStart,omitempty"`
	EstimatedTime *int       `json:"estimatedTime,omitempty"`
	IsUseful      *bool      `json:"isUseful,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// taskEnvelope is the on-disk shape of a task, covering both the current
// schema and the legacy single-user schema (no userId, accumulatedTime
// instead of spentTime).
type taskEnvelope struct {
	Task
	SpentTimeRaw    *int `json:"spentTime"`
	AccumulatedTime *int `json:"accumulatedTime,omitempty"`
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if t.Date == "" {
		return fmt.Errorf("date is required")
	}
	switch t.Status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
	default:
		return fmt.Errorf("invalid status %q", t.Status)
	}
	if t.SpentTime < 0 {
		return fmt.Errorf("spentTime must not be negative (got %d)", t.SpentTime)
	}
	if t.TimerRunning && t.TimerStart == nil {
		return fmt.Errorf("timerStart is required while the timer is running")
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (t *Task) SetDefaults() {
	if t.UserID == "" {
		t.UserID = DefaultUserID
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.TimeLogs == nil {
		t.TimeLogs = []TimeLog{}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
}

// DecodeTask parses a stored task body. Legacy records are normalized:
// a missing userId becomes DefaultUserID and accumulatedTime is folded into
// spentTime. The second return value reports whether the stored form was
// legacy and should be rewritten.
func DecodeTask(body []byte) (*Task, bool, error) {
	var env taskEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false, fmt.Errorf("failed to parse task record: %w", err)
	}

	task := env.Task
	legacy := false

	if task.UserID == "" {
		task.UserID = DefaultUserID
		legacy = true
	}

	// spentTime wins over the legacy accumulator when both are present.
	switch {
	case env.SpentTimeRaw != nil:
		task.SpentTime = *env.SpentTimeRaw
	case env.AccumulatedTime != nil:
		task.SpentTime = *env.AccumulatedTime
		legacy = true
	}

	if task.TimeLogs == nil {
		task.TimeLogs = []TimeLog{}
	}
	return &task, legacy, nil
}

// EncodeTask serializes a task into its current stored form.
func EncodeTask(t *Task) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task %s: %w", t.ID, err)
	}
	return data, nil
}
