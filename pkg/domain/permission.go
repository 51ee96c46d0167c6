package domain

import "github.com/naveenspark/rulekeeper/pkg/lenient"

// PermissionRule grants a role access to commands and dashboard sections.
type PermissionRule struct {
	RoleID         string              `json:"role_id"`
	Commands       lenient.ArrayString `json:"commands"`
	Dashboard      lenient.Bool        `json:"dashboard"`
	ManageSettings lenient.Bool        `json:"manage_settings"`
	Moderate       lenient.Bool        `json:"moderate"`
}
