package domain

import "github.com/naveenspark/rulekeeper/pkg/lenient"

// Guild is a Discord server the signed-in user can manage.
type Guild struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Icon        string       `json:"icon,omitempty"`
	OwnerID     string       `json:"owner_id,omitempty"`
	MemberCount int          `json:"member_count"`
	BotPresent  lenient.Bool `json:"bot_present"`
	Premium     lenient.Bool `json:"premium"`
}

// Discord channel types the dashboard cares about.
const (
	ChannelText         = 0
	ChannelVoice        = 2
	ChannelCategory     = 4
	ChannelAnnouncement = 5
)

// Channel is a guild channel.
type Channel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	ParentID string `json:"parent_id,omitempty"`
	Position int    `json:"position"`
}

// GuildStats is the overview counters shown on the guild home screen.
type GuildStats struct {
	Members       int `json:"members"`
	Online        int `json:"online"`
	MessagesToday int `json:"messages_today"`
	CommandsToday int `json:"commands_today"`
	OpenTickets   int `json:"open_tickets"`
	ModCases      int `json:"mod_cases"`
}

// GuildConfig is the general bot configuration for one guild.
type GuildConfig struct {
	GuildID          string              `json:"guild_id"`
	Prefix           string              `json:"prefix"`
	Language         string              `json:"language"`
	Timezone         string              `json:"timezone,omitempty"`
	WelcomeEnabled   lenient.Bool        `json:"welcome_enabled"`
	WelcomeChannelID string              `json:"welcome_channel_id,omitempty"`
	WelcomeMessage   string              `json:"welcome_message,omitempty"`
	GoodbyeEnabled   lenient.Bool        `json:"goodbye_enabled"`
	GoodbyeChannelID string              `json:"goodbye_channel_id,omitempty"`
	GoodbyeMessage   string              `json:"goodbye_message,omitempty"`
	ModLogChannelID  string              `json:"modlog_channel_id,omitempty"`
	MuteRoleID       string              `json:"mute_role_id,omitempty"`
	IgnoredChannels  lenient.ArrayString `json:"ignored_channels"`
}

// GuildConfigPatch carries a partial config update. Nil fields are left unchanged.
type GuildConfigPatch struct {
	Prefix           *string              `json:"prefix,omitempty"`
	Language         *string              `json:"language,omitempty"`
	Timezone         *string              `json:"timezone,omitempty"`
	WelcomeEnabled   *bool                `json:"welcome_enabled,omitempty"`
	WelcomeChannelID *string              `json:"welcome_channel_id,omitempty"`
	WelcomeMessage   *string              `json:"welcome_message,omitempty"`
	GoodbyeEnabled   *bool                `json:"goodbye_enabled,omitempty"`
	GoodbyeChannelID *string              `json:"goodbye_channel_id,omitempty"`
	GoodbyeMessage   *string              `json:"goodbye_message,omitempty"`
	ModLogChannelID  *string              `json:"modlog_channel_id,omitempty"`
	MuteRoleID       *string              `json:"mute_role_id,omitempty"`
	IgnoredChannels  *lenient.ArrayString `json:"ignored_channels,omitempty"`
}
