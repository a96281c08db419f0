package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// Goal types.
const (
	GoalTypeYearly    = "yearly"
	GoalTypeQuarterly = "quarterly"
	GoalTypeMonthly   = "monthly"
	GoalTypeWeekly    = "weekly"
)

// Goal statuses.
const (
	GoalStatusActive    = "active"
	GoalStatusPaused    = "paused"
	GoalStatusCompleted = "completed"
	GoalStatusFailed    = "failed"
	GoalStatusArchived  = "archived"
)

// Goal progress drivers.
const (
	ProgressManual     = "manual"
	ProgressTaskLinked = "task-linked"
)

// Goal is a yearly/quarterly/monthly/weekly objective with progress
// tracking. Exactly one of Quarter, Month, Week is set, matching Type
// (yearly goals set none). Progress is either adjusted manually or derived
// from the completion state of linked tasks.
type Goal struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Type          string     `json:"type"`
	Year          int        `json:"year"`
	Quarter       *int       `json:"quarter,omitempty"` // 1-4
	Month         *int       `json:"month,omitempty"`   // 1-12
	Week          *int       `json:"week,omitempty"`    // ISO week
	TargetValue   float64    `json:"targetValue"`
	CurrentValue  float64    `json:"currentValue"`
	Unit          string     `json:"unit"`
	ProgressType  string     `json:"progressType"`
	LinkedTaskIDs []string   `json:"linkedTaskIds,omitempty"`
	Status        string     `json:"status"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Validate checks that the goal has valid field values and that its period
// fields match its type.
func (g *Goal) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("id is required")
	}
	if g.Title == "" {
		return fmt.Errorf("title is required")
	}
	if g.Year == 0 {
		return fmt.Errorf("year is required")
	}
	if g.TargetValue <= 0 {
		return fmt.Errorf("targetValue must be positive (got %g)", g.TargetValue)
	}

	switch g.Type {
	case GoalTypeYearly:
		if g.Quarter != nil || g.Month != nil || g.Week != nil {
			return fmt.Errorf("yearly goals must not set quarter, month or week")
		}
	case GoalTypeQuarterly:
		if g.Quarter == nil || g.Month != nil || g.Week != nil {
			return fmt.Errorf("quarterly goals must set quarter only")
		}
		if *g.Quarter < 1 || *g.Quarter > 4 {
			return fmt.Errorf("quarter must be between 1 and 4 (got %d)", *g.Quarter)
		}
	case GoalTypeMonthly:
		if g.Month == nil || g.Quarter != nil || g.Week != nil {
			return fmt.Errorf("monthly goals must set month only")
		}
		if *g.Month < 1 || *g.Month > 12 {
			return fmt.Errorf("month must be between 1 and 12 (got %d)", *g.Month)
		}
	case GoalTypeWeekly:
		if g.Week == nil || g.Quarter != nil || g.Month != nil {
			return fmt.Errorf("weekly goals must set week only")
		}
		if *g.Week < 1 || *g.Week > 53 {
			return fmt.Errorf("week must be between 1 and 53 (got %d)", *g.Week)
		}
	default:
		return fmt.Errorf("invalid goal type %q", g.Type)
	}

	switch g.Status {
	case GoalStatusActive, GoalStatusPaused, GoalStatusCompleted, GoalStatusFailed, GoalStatusArchived:
	default:
		return fmt.Errorf("invalid goal status %q", g.Status)
	}

	switch g.ProgressType {
	case ProgressManual, ProgressTaskLinked:
	default:
		return fmt.Errorf("invalid progressType %q", g.ProgressType)
	}

	return nil
}

// SetDefaults applies default values for optional fields.
func (g *Goal) SetDefaults() {
	if g.UserID == "" {
		g.UserID = DefaultUserID
	}
	if g.Status == "" {
		g.Status = GoalStatusActive
	}
	if g.ProgressType == "" {
		g.ProgressType = ProgressManual
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = g.CreatedAt
	}
}

// DecodeGoal parses a stored goal body, assigning the default user to
// legacy records.
func DecodeGoal(body []byte) (*Goal, bool, error) {
	var g Goal
	if err := json.Unmarshal(body, &g); err != nil {
		return nil, false, fmt.Errorf("failed to parse goal record: %w", err)
	}
	legacy := g.UserID == ""
	if legacy {
		g.UserID = DefaultUserID
	}
	return &g, legacy, nil
}
