package domain

import "github.com/naveenspark/rulekeeper/pkg/lenient"

// Role is a guild role.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Color       int          `json:"color"`
	Position    int          `json:"position"`
	Managed     lenient.Bool `json:"managed"`
	Mentionable lenient.Bool `json:"mentionable"`
}

// AutoRoles are assigned to members (and bots) when they join.
type AutoRoles struct {
	Enabled    lenient.Bool        `json:"enabled"`
	RoleIDs    lenient.ArrayString `json:"role_ids"`
	BotRoleIDs lenient.ArrayString `json:"bot_role_ids"`
}
