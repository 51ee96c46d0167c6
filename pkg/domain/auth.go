package domain

import (
	"time"

	"github.com/naveenspark/rulekeeper/pkg/lenient"
)

// User is a dashboard account, linked to a Discord user.
type User struct {
	ID         string       `json:"id"`
	Username   string       `json:"username"`
	GlobalName string       `json:"global_name,omitempty"`
	Avatar     string       `json:"avatar,omitempty"`
	IsAdmin    lenient.Bool `json:"is_admin"`
	CreatedAt  *time.Time   `json:"created_at,omitempty"`
	LastLogin  *time.Time   `json:"last_login,omitempty"`
}

// LoginRequest is the payload for password login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by login, code exchange, MFA verification and
// refresh. Tokens are absent when the server wants a second factor.
type AuthResponse struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresIn    int          `json:"expires_in,omitempty"` // seconds
	User         *User        `json:"user,omitempty"`
	MFARequired  lenient.Bool `json:"mfa_required"`
	MFAToken     string       `json:"mfa_token,omitempty"`
	Message      string       `json:"message,omitempty"`
}

// HasTokens reports whether both the access and refresh token are present.
func (r *AuthResponse) HasTokens() bool {
	return r != nil && r.AccessToken != "" && r.RefreshToken != ""
}
