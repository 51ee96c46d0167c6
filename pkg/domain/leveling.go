package domain

import "github.com/naveenspark/rulekeeper/pkg/lenient"

// LeaderboardEntry is one row of a guild's XP ranking.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Level    int    `json:"level"`
	XP       int64  `json:"xp"`
	Messages int    `json:"messages"`
}

// LevelingSettings is the XP system configuration for a guild.
type LevelingSettings struct {
	Enabled           lenient.Bool        `json:"enabled"`
	XPPerMessage      int                 `json:"xp_per_message"`
	CooldownSeconds   int                 `json:"cooldown"`
	AnnounceChannelID string              `json:"announce_channel_id,omitempty"`
	AnnounceMessage   string              `json:"announce_message,omitempty"`
	StackRewards      lenient.Bool        `json:"stack_rewards"`
	NoXPRoles         lenient.ArrayString `json:"no_xp_roles"`
	NoXPChannels      lenient.ArrayString `json:"no_xp_channels"`
	Rewards           []LevelReward       `json:"rewards"`
}

// LevelReward grants a role at a level.
type LevelReward struct {
	Level  int    `json:"level"`
	RoleID string `json:"role_id"`
}
