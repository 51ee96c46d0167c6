package domain

import "github.com/naveenspark/rulekeeper/pkg/lenient"

// AppSettings are the signed-in user's dashboard preferences stored server side.
type AppSettings struct {
	Theme          string       `json:"theme"`
	Language       string       `json:"language"`
	Timezone       string       `json:"timezone,omitempty"`
	Notifications  lenient.Bool `json:"notifications"`
	DefaultGuildID string       `json:"default_guild_id,omitempty"`
}

// UserUpdate is an admin change to a dashboard account.
type UserUpdate struct {
	IsAdmin  *bool `json:"is_admin,omitempty"`
	Disabled *bool `json:"disabled,omitempty"`
}
