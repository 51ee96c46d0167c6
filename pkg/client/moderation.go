package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// ModerationService covers cases, actions and automod rules.
type ModerationService struct{ c *Client }

// ListCases returns moderation cases, optionally filtered by user.
func (s *ModerationService) ListCases(ctx context.Context, guildID, userID string, limit, offset int) ([]domain.ModCase, error) {
	params := url.Values{}
	if userID != "" {
		params.Set("user_id", userID)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var cases []domain.ModCase
	if err := s.c.get(ctx, guildPath(guildID, "moderation", "cases")+"?"+params.Encode(), &cases); err != nil {
		return nil, fmt.Errorf("client.Moderation.ListCases: %w", err)
	}
	return cases, nil
}

// Act issues a warn, timeout, kick, ban or unban and returns the new case.
func (s *ModerationService) Act(ctx context.Context, guildID string, a domain.ModerationAction) (*domain.ModCase, error) {
	var c domain.ModCase
	if err := s.c.post(ctx, guildPath(guildID, "moderation", "actions"), a, &c); err != nil {
		return nil, fmt.Errorf("client.Moderation.Act: %w", err)
	}
	return &c, nil
}

// DeleteCase removes a case from the history.
func (s *ModerationService) DeleteCase(ctx context.Context, guildID string, caseID int64) error {
	if err := s.c.delete(ctx, guildPath(guildID, "moderation", "cases", strconv.FormatInt(caseID, 10))); err != nil {
		return fmt.Errorf("client.Moderation.DeleteCase: %w", err)
	}
	return nil
}

// Automod returns the automod rules.
func (s *ModerationService) Automod(ctx context.Context, guildID string) (*domain.AutomodRules, error) {
	var r domain.AutomodRules
	if err := s.c.get(ctx, guildPath(guildID, "moderation", "automod"), &r); err != nil {
		return nil, fmt.Errorf("client.Moderation.Automod: %w", err)
	}
	return &r, nil
}

// UpdateAutomod replaces the automod rules.
func (s *ModerationService) UpdateAutomod(ctx context.Context, guildID string, r domain.AutomodRules) (*domain.AutomodRules, error) {
	var out domain.AutomodRules
	if err := s.c.put(ctx, guildPath(guildID, "moderation", "automod"), r, &out); err != nil {
		return nil, fmt.Errorf("client.Moderation.UpdateAutomod: %w", err)
	}
	return &out, nil
}
