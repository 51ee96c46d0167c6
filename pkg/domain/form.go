package domain

import (
	"time"

	"github.com/naveenspark/rulekeeper/pkg/lenient"
)

// Form question styles.
const (
	QuestionShort     = "short"
	QuestionParagraph = "paragraph"
	QuestionSelect    = "select"
)

// Form is an application or survey members fill in through the bot.
type Form struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	ChannelID         string         `json:"channel_id,omitempty"`
	ResponseChannelID string         `json:"response_channel_id,omitempty"`
	Enabled           lenient.Bool   `json:"enabled"`
	Questions         []FormQuestion `json:"questions"`
	ResponseCount     int            `json:"response_count"`
	CreatedAt         time.Time      `json:"created_at"`
}

// FormQuestion is a single field of a form.
type FormQuestion struct {
	Label       string              `json:"label"`
	Style       string              `json:"style"`
	Placeholder string              `json:"placeholder,omitempty"`
	Required    lenient.Bool        `json:"required"`
	Options     lenient.ArrayString `json:"options"`
}

// CreateFormRequest is the payload for creating a form.
type CreateFormRequest struct {
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	ChannelID         string         `json:"channel_id,omitempty"`
	ResponseChannelID string         `json:"response_channel_id,omitempty"`
	Questions         []FormQuestion `json:"questions"`
}

// FormResponse is one member's submission.
type FormResponse struct {
	ID          string            `json:"id"`
	FormID      string            `json:"form_id"`
	UserID      string            `json:"user_id"`
	Username    string            `json:"username,omitempty"`
	Answers     map[string]string `json:"answers"`
	Status      string            `json:"status,omitempty"` // "pending", "accepted", "denied"
	SubmittedAt time.Time         `json:"submitted_at"`
}
