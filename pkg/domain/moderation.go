package domain

import (
	"time"

	"github.com/naveenspark/rulekeeper/pkg/lenient"
)

// Moderation actions accepted by the actions endpoint.
const (
	ActionWarn    = "warn"
	ActionTimeout = "timeout"
	ActionKick    = "kick"
	ActionBan     = "ban"
	ActionUnban   = "unban"
)

// ModCase is one entry in a guild's moderation history.
type ModCase struct {
	ID            int64        `json:"id"`
	GuildID       string       `json:"guild_id"`
	UserID        string       `json:"user_id"`
	Username      string       `json:"username,omitempty"`
	ModeratorID   string       `json:"moderator_id"`
	ModeratorName string       `json:"moderator_name,omitempty"`
	Action        string       `json:"action"`
	Reason        string       `json:"reason,omitempty"`
	Duration      int          `json:"duration,omitempty"` // seconds
	Active        lenient.Bool `json:"active"`
	CreatedAt     time.Time    `json:"created_at"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
}

// ModerationAction is the payload for issuing a moderation action.
type ModerationAction struct {
	Action            string `json:"action"`
	UserID            string `json:"user_id"`
	Reason            string `json:"reason,omitempty"`
	Duration          int    `json:"duration,omitempty"` // seconds, timeout and temp bans
	DeleteMessageDays int    `json:"delete_message_days,omitempty"`
}

// AutomodRules is the automatic moderation configuration for a guild.
type AutomodRules struct {
	Enabled        lenient.Bool        `json:"enabled"`
	AntiSpam       lenient.Bool        `json:"anti_spam"`
	AntiLinks      lenient.Bool        `json:"anti_links"`
	AntiInvites    lenient.Bool        `json:"anti_invites"`
	MaxMentions    int                 `json:"max_mentions"`
	MaxCapsPercent int                 `json:"max_caps_percent"`
	BannedWords    lenient.ArrayString `json:"banned_words"`
	ExemptRoles    lenient.ArrayString `json:"exempt_roles"`
	ExemptChannels lenient.ArrayString `json:"exempt_channels"`
	Action         string              `json:"action"`
}
