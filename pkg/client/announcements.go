package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// AnnouncementService posts and schedules announcements.
type AnnouncementService struct{ c *Client }

// List returns sent and scheduled announcements.
func (s *AnnouncementService) List(ctx context.Context, guildID string) ([]domain.Announcement, error) {
	var out []domain.Announcement
	if err := s.c.get(ctx, guildPath(guildID, "announcements"), &out); err != nil {
		return nil, fmt.Errorf("client.Announcements.List: %w", err)
	}
	return out, nil
}

// Create posts an announcement now, or schedules it when ScheduledFor is set.
func (s *AnnouncementService) Create(ctx context.Context, guildID string, req domain.CreateAnnouncementRequest) (*domain.Announcement, error) {
	var a domain.Announcement
	if err := s.c.post(ctx, guildPath(guildID, "announcements"), req, &a); err != nil {
		return nil, fmt.Errorf("client.Announcements.Create: %w", err)
	}
	return &a, nil
}

// Delete cancels a scheduled announcement or deletes a sent one.
func (s *AnnouncementService) Delete(ctx context.Context, guildID, id string) error {
	if err := s.c.delete(ctx, guildPath(guildID, "announcements", id)); err != nil {
		return fmt.Errorf("client.Announcements.Delete: %w", err)
	}
	return nil
}
