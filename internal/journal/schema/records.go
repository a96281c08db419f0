package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// Expense is a single expense entry for a day.
type Expense struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DailyJournal ties a day's records together: the task and expense IDs that
// belong to the day plus pointers to the day's sleep and mood entries.
type DailyJournal struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Date       string    `json:"date"`
	TaskIDs    []string  `json:"tasks"`
	ExpenseIDs []string  `json:"expenses"`
	SleepID    string    `json:"sleepId,omitempty"`
	MoodID     string    `json:"moodId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Mood is the single mood entry for a (date, user) pair.
type Mood struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Date         string    `json:"date"`
	Rating       float64   `json:"rating"` // 1-10
	DayScore     float64   `json:"dayScore"`
	Notes        string    `json:"notes"`
	WaterIntake  int       `json:"waterIntake"`  // glasses
	StudyMinutes int       `json:"studyMinutes"` // minutes
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sleep is the single sleep entry for a (date, user) pair.
type Sleep struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Date       string    `json:"date"`
	SleepTime  string    `json:"sleepTime,omitempty"` // HH:MM
	WakeTime   string    `json:"wakeTime,omitempty"`  // HH:MM
	HoursSlept float64   `json:"hoursSlept"`
	Quality    int       `json:"quality"` // 1-10
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CalendarNote is a free-text note attached to a calendar day.
type CalendarNote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DecodeExpense parses a stored expense body, assigning the default user to
// legacy records. Reports whether the stored form was legacy.
func DecodeExpense(body []byte) (*Expense, bool, error) {
	var e Expense
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, false, fmt.Errorf("failed to parse expense record: %w", err)
	}
	legacy := e.UserID == ""
	if legacy {
		e.UserID = DefaultUserID
	}
	return &e, legacy, nil
}

// DecodeJournal parses a stored daily journal body.
func DecodeJournal(body []byte) (*DailyJournal, bool, error) {
	var j DailyJournal
	if err := json.Unmarshal(body, &j); err != nil {
		return nil, false, fmt.Errorf("failed to parse journal record: %w", err)
	}
	legacy := j.UserID == ""
	if legacy {
		j.UserID = DefaultUserID
	}
	if j.TaskIDs == nil {
		j.TaskIDs = []string{}
	}
	if j.ExpenseIDs == nil {
		j.ExpenseIDs = []string{}
	}
	return &j, legacy, nil
}

// DecodeMood parses a stored mood body.
func DecodeMood(body []byte) (*Mood, bool, error) {
	var m Mood
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, false, fmt.Errorf("failed to parse mood record: %w", err)
	}
	legacy := m.UserID == ""
	if legacy {
		m.UserID = DefaultUserID
	}
	return &m, legacy, nil
}

// DecodeSleep parses a stored sleep body.
func DecodeSleep(body []byte) (*Sleep, bool, error) {
	var s Sleep
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, false, fmt.Errorf("failed to parse sleep record: %w", err)
	}
	legacy := s.UserID == ""
	if legacy {
		s.UserID = DefaultUserID
	}
	return &s, legacy, nil
}

// DecodeCalendarNote parses a stored calendar note body.
func DecodeCalendarNote(body []byte) (*CalendarNote, bool, error) {
	var n CalendarNote
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, false, fmt.Errorf("failed to parse calendar note record: %w", err)
	}
	legacy := n.UserID == ""
	if legacy {
		n.UserID = DefaultUserID
	}
	return &n, legacy, nil
}
