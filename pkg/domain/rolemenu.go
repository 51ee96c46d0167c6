package domain

// RoleMenu is a self-assign role message.
type RoleMenu struct {
	ID            string           `json:"id"`
	ChannelID     string           `json:"channel_id"`
	MessageID     string           `json:"message_id,omitempty"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Style         string           `json:"style"` // "buttons", "dropdown", "reactions"
	MaxSelections int              `json:"max_selections"`
	Options       []RoleMenuOption `json:"options"`
}

// RoleMenuOption maps one choice to a role.
type RoleMenuOption struct {
	RoleID      string `json:"role_id"`
	Label       string `json:"label"`
	Emoji       string `json:"emoji,omitempty"`
	Description string `json:"description,omitempty"`
}
