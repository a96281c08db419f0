package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// UserProfile describes an account-local profile. Unlike the other records
// a profile IS a user, so its ID doubles as the userId that owns records.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Education string    `json:"education,omitempty"`
	JobTitle  string    `json:"jobTitle,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Skills    []string  `json:"skills,omitempty"`
	Location  string    `json:"location,omitempty"`
	MBTIType  string    `json:"mbtiType,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultProfile returns the synthetic profile created on first access when
// no profiles exist yet.
func DefaultProfile() *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		ID:        DefaultUserID,
		Name:      "Default",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DecodeProfile parses a stored profile body.
func DecodeProfile(body []byte) (*UserProfile, bool, error) {
	var p UserProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, false, fmt.Errorf("failed to parse profile record: %w", err)
	}
	return &p, false, nil
}
