package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// Store names. These are the object stores of the journal database; the
// order of Stores() is the fixed order the migration engine processes them.
const (
	StoreTasks         = "tasks"
	StoreExpenses      = "expenses"
	StoreJournals      = "daily_journals"
	StoreMoods         = "moods"
	StoreSleep         = "sleep"
	StoreGoals         = "goals"
	StoreCalendarNotes = "calendar_notes"
	StoreProfiles      = "user_profiles"
	StoreAISessions    = "ai_sessions"
	StoreAIMessages    = "ai_messages"
	StoreAIReports     = "ai_reports"
)

// Stores returns every known store in migration order.
func Stores() []string {
	return []string{
		StoreTasks,
		StoreExpenses,
		StoreJournals,
		StoreMoods,
		StoreSleep,
		StoreGoals,
		StoreCalendarNotes,
		StoreProfiles,
		StoreAISessions,
		StoreAIMessages,
		StoreAIReports,
	}
}

// SyncedStores returns the stores exchanged with the remote backend during
// sync. Profiles and AI chat state stay local.
func SyncedStores() []string {
	return []string{
		StoreTasks,
		StoreExpenses,
		StoreJournals,
		StoreMoods,
		StoreSleep,
		StoreGoals,
		StoreCalendarNotes,
	}
}

// Meta holds the indexed column values extracted from a record body.
type Meta struct {
	ID        string
	UserID    string
	Date      string
	SessionID string
	UpdatedAt time.Time
}

// Normalize decodes a stored body for the named store and re-encodes it in
// the current schema. It returns the normalized body, the record's meta,
// and whether the stored form was legacy and should be rewritten.
func Normalize(store string, body []byte) ([]byte, Meta, bool, error) {
	switch store {
	case StoreTasks:
		t, legacy, err := DecodeTask(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(t, Meta{ID: t.ID, UserID: t.UserID, Date: t.Date, UpdatedAt: t.UpdatedAt}, legacy)

	case StoreExpenses:
		e, legacy, err := DecodeExpense(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(e, Meta{ID: e.ID, UserID: e.UserID, Date: e.Date, UpdatedAt: e.UpdatedAt}, legacy)

	case StoreJournals:
		j, legacy, err := DecodeJournal(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(j, Meta{ID: j.ID, UserID: j.UserID, Date: j.Date, UpdatedAt: j.UpdatedAt}, legacy)

	case StoreMoods:
		m, legacy, err := DecodeMood(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(m, Meta{ID: m.ID, UserID: m.UserID, Date: m.Date, UpdatedAt: m.UpdatedAt}, legacy)

	case StoreSleep:
		s, legacy, err := DecodeSleep(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(s, Meta{ID: s.ID, UserID: s.UserID, Date: s.Date, UpdatedAt: s.UpdatedAt}, legacy)

	case StoreGoals:
		g, legacy, err := DecodeGoal(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(g, Meta{ID: g.ID, UserID: g.UserID, UpdatedAt: g.UpdatedAt}, legacy)

	case StoreCalendarNotes:
		n, legacy, err := DecodeCalendarNote(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(n, Meta{ID: n.ID, UserID: n.UserID, Date: n.Date, UpdatedAt: n.UpdatedAt}, legacy)

	case StoreProfiles:
		p, legacy, err := DecodeProfile(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		// A profile is its own owner.
		return reencode(p, Meta{ID: p.ID, UserID: p.ID, UpdatedAt: p.UpdatedAt}, legacy)

	case StoreAISessions:
		s, legacy, err := DecodeAISession(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(s, Meta{ID: s.ID, UserID: s.UserID, UpdatedAt: s.UpdatedAt}, legacy)

	case StoreAIMessages:
		m, legacy, err := DecodeAIMessage(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(m, Meta{ID: m.ID, SessionID: m.SessionID, UpdatedAt: m.Timestamp}, legacy)

	case StoreAIReports:
		r, legacy, err := DecodeAIReport(body)
		if err != nil {
			return nil, Meta{}, false, err
		}
		return reencode(r, Meta{ID: r.ID, UserID: r.UserID, UpdatedAt: r.CreatedAt}, legacy)
	}

	return nil, Meta{}, false, fmt.Errorf("unknown store %q", store)
}

func reencode(record any, meta Meta, legacy bool) ([]byte, Meta, bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, Meta{}, false, fmt.Errorf("failed to marshal record %s: %w", meta.ID, err)
	}
	return data, meta, legacy, nil
}
