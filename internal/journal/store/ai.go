package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// GetAISessions returns the user's chat sessions, most recently updated
// first.
func (s *Store) GetAISessions(ctx context.Context, userID string) ([]*schema.AISession, error) {
	userID = orDefault(userID)

	bodies, err := s.bodiesByUser(ctx, schema.StoreAISessions, userID)
	if err != nil {
		return nil, err
	}

	var sessions []*schema.AISession
	for _, body := range bodies {
		session, _, err := schema.DecodeAISession(body)
		if err != nil {
			s.log.Warnw("skipping undecodable ai session", "error", err)
			continue
		}
		if session.UserID != userID {
			continue
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// SaveAISession upserts a chat session.
func (s *Store) SaveAISession(ctx context.Context, session *schema.AISession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.UserID == "" {
		session.UserID = schema.DefaultUserID
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now().UTC()
	}

	meta := schema.Meta{ID: session.ID, UserID: session.UserID, UpdatedAt: session.UpdatedAt}
	return s.saveRecord(ctx, schema.StoreAISessions, session, meta)
}

// DeleteAISession removes a session and all of its messages.
func (s *Store) DeleteAISession(ctx context.Context, id string) error {
	if _, err := s.db.RawDB().ExecContext(ctx,
		"DELETE FROM ai_messages WHERE session_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete messages of session %s: %w", id, err)
	}
	return s.deleteByID(ctx, schema.StoreAISessions, id)
}

// GetAIMessages returns a session's messages ordered by timestamp
// ascending.
func (s *Store) GetAIMessages(ctx context.Context, sessionID string) ([]*schema.AIMessage, error) {
	bodies, err := s.bodies(ctx, schema.StoreAIMessages,
		"SELECT body FROM ai_messages WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, err
	}

	var messages []*schema.AIMessage
	for _, body := range bodies {
		message, _, err := schema.DecodeAIMessage(body)
		if err != nil {
			s.log.Warnw("skipping undecodable ai message", "session", sessionID, "error", err)
			continue
		}
		messages = append(messages, message)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

// SaveAIMessage upserts a message and touches its session's updatedAt.
func (s *Store) SaveAIMessage(ctx context.Context, m *schema.AIMessage) error {
	if m.SessionID == "" {
		return fmt.Errorf("invalid ai message: sessionId is required")
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}

	meta := schema.Meta{ID: m.ID, SessionID: m.SessionID, UpdatedAt: m.Timestamp}
	if err := s.saveRecord(ctx, schema.StoreAIMessages, m, meta); err != nil {
		return err
	}

	if _, err := s.db.RawDB().ExecContext(ctx,
		"UPDATE ai_sessions SET updated_at = ? WHERE id = ?",
		fmtTime(m.Timestamp), m.SessionID); err != nil {
		return fmt.Errorf("failed to touch session %s: %w", m.SessionID, err)
	}
	return nil
}

// GetAIReports returns the user's reports, newest first.
func (s *Store) GetAIReports(ctx context.Context, userID string) ([]*schema.AIReport, error) {
	userID = orDefault(userID)

	bodies, err := s.bodiesByUser(ctx, schema.StoreAIReports, userID)
	if err != nil {
		return nil, err
	}

	var reports []*schema.AIReport
	for _, body := range bodies {
		report, _, err := schema.DecodeAIReport(body)
		if err != nil {
			s.log.Warnw("skipping undecodable ai report", "error", err)
			continue
		}
		if report.UserID != userID {
			continue
		}
		reports = append(reports, report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
	return reports, nil
}

// SaveAIReport upserts a report, then evicts the user's oldest reports
// beyond the per-user cap.
func (s *Store) SaveAIReport(ctx context.Context, r *schema.AIReport) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.UserID == "" {
		r.UserID = schema.DefaultUserID
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	meta := schema.Meta{ID: r.ID, UserID: r.UserID, UpdatedAt: r.CreatedAt}
	if err := s.saveRecord(ctx, schema.StoreAIReports, r, meta); err != nil {
		return err
	}

	evict := `
	DELETE FROM ai_reports
	WHERE user_id = ? AND id NOT IN (
		SELECT id FROM ai_reports WHERE user_id = ?
		ORDER BY updated_at DESC, rowid DESC
		LIMIT ?
	)`
	if _, err := s.db.RawDB().ExecContext(ctx, evict, r.UserID, r.UserID, schema.AIReportCap); err != nil {
		return fmt.Errorf("failed to evict old reports for %s: %w", r.UserID, err)
	}
	return nil
}

// DeleteAIReport removes a report by id.
func (s *Store) DeleteAIReport(ctx context.Context, id string) error {
	return s.deleteByID(ctx, schema.StoreAIReports, id)
}
