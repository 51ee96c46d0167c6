package domain

import (
	"time"

	"github.com/naveenspark/rulekeeper/pkg/lenient"
)

// Backup is a stored snapshot of a guild's structure.
type Backup struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	SizeBytes        int64        `json:"size_bytes"`
	IncludesMessages lenient.Bool `json:"includes_messages"`
	CreatedBy        string       `json:"created_by,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// CreateBackupRequest is the payload for taking a backup.
type CreateBackupRequest struct {
	Name            string `json:"name"`
	IncludeMessages bool   `json:"include_messages"`
}

// RestoreOptions controls what a restore overwrites.
type RestoreOptions struct {
	ClearExisting bool `json:"clear_existing"`
	Roles         bool `json:"roles"`
	Channels      bool `json:"channels"`
	Settings      bool `json:"settings"`
}
