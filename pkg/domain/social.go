package domain

import (
	"time"

	"github.com/naveenspark/rulekeeper/pkg/lenient"
)

// TwitchSubscription announces a streamer going live in a channel.
type TwitchSubscription struct {
	ID            string       `json:"id"`
	Streamer      string       `json:"streamer"`
	ChannelID     string       `json:"channel_id"`
	Message       string       `json:"message,omitempty"`
	MentionRoleID string       `json:"mention_role_id,omitempty"`
	Live          lenient.Bool `json:"live"`
	LastLiveAt    *time.Time   `json:"last_live_at,omitempty"`
}

// CreateTwitchRequest is the payload for adding a Twitch subscription.
type CreateTwitchRequest struct {
	Streamer      string `json:"streamer"`
	ChannelID     string `json:"channel_id"`
	Message       string `json:"message,omitempty"`
	MentionRoleID string `json:"mention_role_id,omitempty"`
}

// YouTubeSubscription announces new uploads from a YouTube channel.
type YouTubeSubscription struct {
	ID               string     `json:"id"`
	YouTubeChannelID string     `json:"youtube_channel_id"`
	ChannelName      string     `json:"channel_name,omitempty"`
	ChannelID        string     `json:"channel_id"`
	Message          string     `json:"message,omitempty"`
	MentionRoleID    string     `json:"mention_role_id,omitempty"`
	LastVideoID      string     `json:"last_video_id,omitempty"`
	LastVideoAt      *time.Time `json:"last_video_at,omitempty"`
}

// CreateYouTubeRequest is the payload for adding a YouTube subscription.
type CreateYouTubeRequest struct {
	YouTubeChannelID string `json:"youtube_channel_id"`
	ChannelID        string `json:"channel_id"`
	Message          string `json:"message,omitempty"`
	MentionRoleID    string `json:"mention_role_id,omitempty"`
}
