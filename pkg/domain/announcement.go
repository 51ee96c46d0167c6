package domain

import (
	"time"

	"github.com/naveenspark/rulekeeper/pkg/lenient"
)

// Announcement is a message the bot posts, now or at a scheduled time.
type Announcement struct {
	ID            string       `json:"id"`
	ChannelID     string       `json:"channel_id"`
	Title         string       `json:"title,omitempty"`
	Content       string       `json:"content"`
	EmbedColor    int          `json:"embed_color,omitempty"`
	MentionRoleID string       `json:"mention_role_id,omitempty"`
	ScheduledFor  *time.Time   `json:"scheduled_for,omitempty"`
	Sent          lenient.Bool `json:"sent"`
	CreatedBy     string       `json:"created_by,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// CreateAnnouncementRequest is the payload for posting or scheduling an announcement.
type CreateAnnouncementRequest struct {
	ChannelID     string     `json:"channel_id"`
	Title         string     `json:"title,omitempty"`
	Content       string     `json:"content"`
	EmbedColor    int        `json:"embed_color,omitempty"`
	MentionRoleID string     `json:"mention_role_id,omitempty"`
	ScheduledFor  *time.Time `json:"scheduled_for,omitempty"`
}
