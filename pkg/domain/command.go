package domain

import "github.com/naveenspark/rulekeeper/pkg/lenient"

// Command is a bot command and its per-guild settings.
type Command struct {
	Name            string              `json:"name"`
	Description     string              `json:"description"`
	Category        string              `json:"category"`
	Enabled         lenient.Bool        `json:"enabled"`
	CooldownSeconds int                 `json:"cooldown"`
	AllowedRoles    lenient.ArrayString `json:"allowed_roles"`
	AllowedChannels lenient.ArrayString `json:"allowed_channels"`
}

// CommandUpdate changes a command's per-guild settings.
type CommandUpdate struct {
	Enabled         *bool                `json:"enabled,omitempty"`
	CooldownSeconds *int                 `json:"cooldown,omitempty"`
	AllowedRoles    *lenient.ArrayString `json:"allowed_roles,omitempty"`
	AllowedChannels *lenient.ArrayString `json:"allowed_channels,omitempty"`
}
