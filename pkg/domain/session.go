package domain

// Session is the locally persisted authentication state.
// Empty strings mean the value is absent.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Username     string
	IsAdmin      bool
}

// Authenticated reports whether an access token is present.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}
