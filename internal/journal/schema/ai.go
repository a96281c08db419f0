package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// AIReportCap is the maximum number of reports kept per user. The oldest
// report is evicted when an insert goes beyond the cap.
const AIReportCap = 20

// AISession is one chat conversation with the assistant.
type AISession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AIMessage is one message within a session, ordered by Timestamp.
type AIMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"` // user or assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AIReport is a generated digest kept for later viewing. Parsed holds the
// structured form when the raw text could be parsed, otherwise it is empty.
type AIReport struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	PeriodKey string          `json:"periodKey"` // 2025-01-15, 2025-W03, 2025-01, 2025
	Title     string          `json:"title"`
	Raw       string          `json:"raw"`
	Parsed    json.RawMessage `json:"parsed,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// DecodeAISession parses a stored session body.
func DecodeAISession(body []byte) (*AISession, bool, error) {
	var s AISession
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, false, fmt.Errorf("failed to parse ai session record: %w", err)
	}
	legacy := s.UserID == ""
	if legacy {
		s.UserID = DefaultUserID
	}
	return &s, legacy, nil
}

// DecodeAIMessage parses a stored message body. Messages are scoped by
// session rather than user, so they never need ownership migration.
func DecodeAIMessage(body []byte) (*AIMessage, bool, error) {
	var m AIMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, false, fmt.Errorf("failed to parse ai message record: %w", err)
	}
	return &m, false, nil
}

// DecodeAIReport parses a stored report body.
func DecodeAIReport(body []byte) (*AIReport, bool, error) {
	var r AIReport
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, false, fmt.Errorf("failed to parse ai report record: %w", err)
	}
	legacy := r.UserID == ""
	if legacy {
		r.UserID = DefaultUserID
	}
	return &r, legacy, nil
}
