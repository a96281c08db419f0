package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// ListProfiles returns every local profile. The synthetic "default"
// profile is created on first access when no profiles exist yet, so the
// result is never empty.
func (s *Store) ListProfiles(ctx context.Context) ([]*schema.UserProfile, error) {
	bodies, err := s.bodies(ctx, schema.StoreProfiles,
		"SELECT body FROM user_profiles ORDER BY rowid")
	if err != nil {
		return nil, err
	}

	var profiles []*schema.UserProfile
	for _, body := range bodies {
		profile, _, err := schema.DecodeProfile(body)
		if err != nil {
			s.log.Warnw("skipping undecodable profile record", "error", err)
			continue
		}
		profiles = append(profiles, profile)
	}

	if len(profiles) == 0 {
		profile := schema.DefaultProfile()
		if err := s.SaveProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create default profile: %w", err)
		}
		s.log.Infow("created default profile")
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// GetProfile returns a profile by id, or nil.
func (s *Store) GetProfile(ctx context.Context, id string) (*schema.UserProfile, error) {
	body, err := s.bodyByID(ctx, schema.StoreProfiles, id)
	if err != nil || body == nil {
		return nil, err
	}
	profile, _, err := schema.DecodeProfile(body)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	return profile, nil
}

// SaveProfile upserts a profile.
func (s *Store) SaveProfile(ctx context.Context, p *schema.UserProfile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Name == "" {
		return fmt.Errorf("invalid profile %s: name is required", p.ID)
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	// A profile is its own owner.
	meta := schema.Meta{ID: p.ID, UserID: p.ID, UpdatedAt: p.UpdatedAt}
	return s.saveRecord(ctx, schema.StoreProfiles, p, meta)
}

// DeleteProfile removes a profile by id. The records the profile owned are
// left in place; they surface again if a profile with the same id returns.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	return s.deleteByID(ctx, schema.StoreProfiles, id)
}
