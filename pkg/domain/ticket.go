package domain

import (
	"time"

	"github.com/naveenspark/rulekeeper/pkg/lenient"
)

// Ticket statuses.
const (
	TicketOpen    = "open"
	TicketClaimed = "claimed"
	TicketClosed  = "closed"
)

// Ticket is a support ticket channel opened by a member.
type Ticket struct {
	ID        string     `json:"id"`
	ChannelID string     `json:"channel_id"`
	UserID    string     `json:"user_id"`
	Username  string     `json:"username,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	Status    string     `json:"status"`
	ClaimedBy string     `json:"claimed_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// TicketConfig is the ticket system configuration for a guild.
type TicketConfig struct {
	Enabled             lenient.Bool        `json:"enabled"`
	CategoryID          string              `json:"category_id,omitempty"`
	PanelChannelID      string              `json:"panel_channel_id,omitempty"`
	TranscriptChannelID string              `json:"transcript_channel_id,omitempty"`
	SupportRoles        lenient.ArrayString `json:"support_roles"`
	MaxOpenPerUser      int                 `json:"max_open_per_user"`
	WelcomeMessage      string              `json:"welcome_message,omitempty"`
}
