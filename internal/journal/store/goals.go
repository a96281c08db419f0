package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// GoalFilter narrows ListGoals. Zero values mean "all".
type GoalFilter struct {
	Type   string
	Year   int
	Status string
}

// ListGoals returns the user's goals matching the filter.
func (s *Store) ListGoals(ctx context.Context, userID string, filter GoalFilter) ([]*schema.Goal, error) {
	userID = orDefault(userID)

	bodies, err := s.bodiesByUser(ctx, schema.StoreGoals, userID)
	if err != nil {
		return nil, err
	}

	var goals []*schema.Goal
	for _, body := range bodies {
		goal, _, err := schema.DecodeGoal(body)
		if err != nil {
			s.log.Warnw("skipping undecodable goal record", "error", err)
			continue
		}
		if goal.UserID != userID {
			continue
		}
		if filter.Type != "" && goal.Type != filter.Type {
			continue
		}
		if filter.Year != 0 && goal.Year != filter.Year {
			continue
		}
		if filter.Status != "" && goal.Status != filter.Status {
			continue
		}
		goals = append(goals, goal)
	}
	return goals, nil
}

// GetGoalByID returns a single goal, or nil if it doesn't exist.
func (s *Store) GetGoalByID(ctx context.Context, id string) (*schema.Goal, error) {
	body, err := s.bodyByID(ctx, schema.StoreGoals, id)
	if err != nil || body == nil {
		return nil, err
	}
	goal, _, err := schema.DecodeGoal(body)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", id, err)
	}
	return goal, nil
}

// SaveGoal upserts a goal, overwriting the full record.
func (s *Store) SaveGoal(ctx context.Context, g *schema.Goal) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	g.SetDefaults()
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid goal %s: %w", g.ID, err)
	}

	meta := schema.Meta{ID: g.ID, UserID: g.UserID, UpdatedAt: g.UpdatedAt}
	return s.saveRecord(ctx, schema.StoreGoals, g, meta)
}

// DeleteGoal removes a goal by id.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return s.deleteByID(ctx, schema.StoreGoals, id)
}

// UpdateProgress adjusts a goal's current value by delta (negative to
// decrement, clamped at zero). An active goal reaching its target is
// marked completed with a completion timestamp.
func (s *Store) UpdateProgress(ctx context.Context, id string, delta float64) (*schema.Goal, error) {
	goal, err := s.GetGoalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, fmt.Errorf("cannot update progress: goal %s not found", id)
	}
	if goal.ProgressType != schema.ProgressManual {
		return nil, fmt.Errorf("goal %s progress is task-linked, not manual", id)
	}

	goal.CurrentValue += delta
	if goal.CurrentValue < 0 {
		goal.CurrentValue = 0
	}
	s.finishIfReached(goal)
	goal.UpdatedAt = time.Now().UTC()

	if err := s.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// RecomputeLinkedProgress rederives a task-linked goal's current value
// from the completion state of its linked tasks. Linked tasks that no
// longer exist count as not done.
func (s *Store) RecomputeLinkedProgress(ctx context.Context, id string) (*schema.Goal, error) {
	goal, err := s.GetGoalByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, fmt.Errorf("cannot recompute progress: goal %s not found", id)
	}
	if goal.ProgressType != schema.ProgressTaskLinked {
		return goal, nil
	}

	done := 0
	for _, taskID := range goal.LinkedTaskIDs {
		task, err := s.GetTaskByID(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("goal %s: %w", id, err)
		}
		if task != nil && task.Status == schema.TaskStatusDone {
			done++
		}
	}

	goal.CurrentValue = float64(done)
	s.finishIfReached(goal)
	goal.UpdatedAt = time.Now().UTC()

	if err := s.SaveGoal(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *Store) finishIfReached(goal *schema.Goal) {
	if goal.Status != schema.GoalStatusActive || goal.CurrentValue < goal.TargetValue {
		return
	}
	now := time.Now().UTC()
	goal.Status = schema.GoalStatusCompleted
	goal.CompletedAt = &now
	s.log.Infow("goal completed", "goal", goal.ID, "title", goal.Title)
}
