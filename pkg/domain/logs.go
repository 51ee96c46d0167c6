package domain

import (
	"time"

	"github.com/naveenspark/rulekeeper/pkg/lenient"
)

// LogEntry is one audit event recorded by the bot.
type LogEntry struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // e.g. "message_delete", "member_join", "role_update"
	ActorID   string    `json:"actor_id,omitempty"`
	TargetID  string    `json:"target_id,omitempty"`
	ChannelID string    `json:"channel_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LogConfig selects which events the bot logs and where.
type LogConfig struct {
	Enabled         lenient.Bool        `json:"enabled"`
	ChannelID       string              `json:"channel_id,omitempty"`
	Events          lenient.ArrayString `json:"events"`
	IgnoredChannels lenient.ArrayString `json:"ignored_channels"`
	IgnoredUsers    lenient.ArrayString `json:"ignored_users"`
}
