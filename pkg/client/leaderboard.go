package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// LeaderboardService covers the XP ranking and leveling settings.
type LeaderboardService struct{ c *Client }

// List returns ranked members.
func (s *LeaderboardService) List(ctx context.Context, guildID string, limit, offset int) ([]domain.LeaderboardEntry, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var entries []domain.LeaderboardEntry
	if err := s.c.get(ctx, guildPath(guildID, "leaderboard")+"?"+params.Encode(), &entries); err != nil {
		return nil, fmt.Errorf("client.Leaderboard.List: %w", err)
	}
	return entries, nil
}

// ResetUser clears a member's XP.
func (s *LeaderboardService) ResetUser(ctx context.Context, guildID, userID string) error {
	if err := s.c.post(ctx, guildPath(guildID, "leaderboard", userID, "reset"), nil, nil); err != nil {
		return fmt.Errorf("client.Leaderboard.ResetUser: %w", err)
	}
	return nil
}

// Settings returns the leveling configuration.
func (s *LeaderboardService) Settings(ctx context.Context, guildID string) (*domain.LevelingSettings, error) {
	var ls domain.LevelingSettings
	if err := s.c.get(ctx, guildPath(guildID, "leveling"), &ls); err != nil {
		return nil, fmt.Errorf("client.Leaderboard.Settings: %w", err)
	}
	return &ls, nil
}

// UpdateSettings replaces the leveling configuration.
func (s *LeaderboardService) UpdateSettings(ctx context.Context, guildID string, ls domain.LevelingSettings) (*domain.LevelingSettings, error) {
	var out domain.LevelingSettings
	if err := s.c.put(ctx, guildPath(guildID, "leveling"), ls, &out); err != nil {
		return nil, fmt.Errorf("client.Leaderboard.UpdateSettings: %w", err)
	}
	return &out, nil
}
