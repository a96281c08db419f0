package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// GetTasks returns all tasks for a date owned by the user. Legacy records
// without an owner surface to the default user.
func (s *Store) GetTasks(ctx context.Context, date, userID string) ([]*schema.Task, error) {
	userID = orDefault(userID)

	bodies, err := s.bodiesByDate(ctx, schema.StoreTasks, date)
	if err != nil {
		return nil, err
	}

	var tasks []*schema.Task
	for _, body := range bodies {
		task, _, err := schema.DecodeTask(body)
		if err != nil {
			s.log.Warnw("skipping undecodable task record", "date", date, "error", err)
			continue
		}
		if task.UserID != userID {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// GetTaskByID returns a single task, or nil if it doesn't exist.
func (s *Store) GetTaskByID(ctx context.Context, id string) (*schema.Task, error) {
	body, err := s.bodyByID(ctx, schema.StoreTasks, id)
	if err != nil || body == nil {
		return nil, err
	}
	task, _, err := schema.DecodeTask(body)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}
	return task, nil
}

// SaveTask upserts a task, overwriting the full record. A missing ID gets
// a generated one; a missing updatedAt is stamped with the current time.
func (s *Store) SaveTask(ctx context.Context, task *schema.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	task.SetDefaults()
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task %s: %w", task.ID, err)
	}

	body, err := schema.EncodeTask(task)
	if err != nil {
		return err
	}
	meta := schema.Meta{ID: task.ID, UserID: task.UserID, Date: task.Date, UpdatedAt: task.UpdatedAt}
	return s.put(ctx, schema.StoreTasks, meta, body)
}

// DeleteTask removes a task by id. Deleting a missing task is a no-op.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.deleteByID(ctx, schema.StoreTasks, id)
}

// StartTimer marks the task's timer as running from now. Starting an
// already-running timer is a no-op.
func (s *Store) StartTimer(ctx context.Context, id string, now time.Time) (*schema.Task, error) {
	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("cannot start timer: task %s not found", id)
	}
	if task.TimerRunning {
		return task, nil
	}

	start := now.UTC()
	task.TimerRunning = true
	task.TimerStart = &start
	task.UpdatedAt = start

	if err := s.SaveTask(ctx, task); err != nil {
		return nil, err
	}
	s.log.Debugw("timer started", "task", id)
	return task, nil
}

// StopTimer stops a running timer: it appends exactly one timer time log
// with the elapsed minutes, adds them to spentTime, and clears the timer
// state. Stopping a stopped timer is a no-op.
func (s *Store) StopTimer(ctx context.Context, id string, now time.Time) (*schema.Task, error) {
	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("cannot stop timer: task %s not found", id)
	}
	if !task.TimerRunning || task.TimerStart == nil {
		return task, nil
	}

	elapsed := int(math.Round(now.Sub(*task.TimerStart).Minutes()))
	if elapsed < 0 {
		elapsed = 0
	}

	task.TimeLogs = append(task.TimeLogs, schema.TimeLog{
		ID:        uuid.New().String(),
		Type:      schema.TimeLogTimer,
		Minutes:   elapsed,
		CreatedAt: now.UTC(),
	})
	task.SpentTime += elapsed
	task.TimerRunning = false
	task.TimerStart = nil
	task.UpdatedAt = now.UTC()

	if err := s.SaveTask(ctx, task); err != nil {
		return nil, err
	}
	s.log.Debugw("timer stopped", "task", id, "minutes", elapsed)
	return task, nil
}

// AddManualTime appends a manual time log and adds its minutes to
// spentTime.
func (s *Store) AddManualTime(ctx context.Context, id string, minutes int, now time.Time) (*schema.Task, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("minutes must be positive (got %d)", minutes)
	}

	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("cannot log time: task %s not found", id)
	}

	task.TimeLogs = append(task.TimeLogs, schema.TimeLog{
		ID:        uuid.New().String(),
		Type:      schema.TimeLogManual,
		Minutes:   minutes,
		CreatedAt: now.UTC(),
	})
	task.SpentTime += minutes
	task.UpdatedAt = now.UTC()

	if err := s.SaveTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}
