package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// TwitchService manages go-live notifications.
type TwitchService struct{ c *Client }

// List returns the guild's Twitch subscriptions.
func (s *TwitchService) List(ctx context.Context, guildID string) ([]domain.TwitchSubscription, error) {
	var subs []domain.TwitchSubscription
	if err := s.c.get(ctx, guildPath(guildID, "twitch"), &subs); err != nil {
		return nil, fmt.Errorf("client.Twitch.List: %w", err)
	}
	return subs, nil
}

// Add subscribes a channel to a streamer.
func (s *TwitchService) Add(ctx context.Context, guildID string, req domain.CreateTwitchRequest) (*domain.TwitchSubscription, error) {
	var sub domain.TwitchSubscription
	if err := s.c.post(ctx, guildPath(guildID, "twitch"), req, &sub); err != nil {
		return nil, fmt.Errorf("client.Twitch.Add: %w", err)
	}
	return &sub, nil
}

// Remove deletes a subscription.
func (s *TwitchService) Remove(ctx context.Context, guildID, id string) error {
	if err := s.c.delete(ctx, guildPath(guildID, "twitch", id)); err != nil {
		return fmt.Errorf("client.Twitch.Remove: %w", err)
	}
	return nil
}

// YouTubeService manages upload notifications.
type YouTubeService struct{ c *Client }

// List returns the guild's YouTube subscriptions.
func (s *YouTubeService) List(ctx context.Context, guildID string) ([]domain.YouTubeSubscription, error) {
	var subs []domain.YouTubeSubscription
	if err := s.c.get(ctx, guildPath(guildID, "youtube"), &subs); err != nil {
		return nil, fmt.Errorf("client.YouTube.List: %w", err)
	}
	return subs, nil
}

// Add subscribes a channel to a YouTube channel's uploads.
func (s *YouTubeService) Add(ctx context.Context, guildID string, req domain.CreateYouTubeRequest) (*domain.YouTubeSubscription, error) {
	var sub domain.YouTubeSubscription
	if err := s.c.post(ctx, guildPath(guildID, "youtube"), req, &sub); err != nil {
		return nil, fmt.Errorf("client.YouTube.Add: %w", err)
	}
	return &sub, nil
}

// Remove deletes a subscription.
func (s *YouTubeService) Remove(ctx context.Context, guildID, id string) error {
	if err := s.c.delete(ctx, guildPath(guildID, "youtube", id)); err != nil {
		return fmt.Errorf("client.YouTube.Remove: %w", err)
	}
	return nil
}
