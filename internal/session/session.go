// Package session moves the user between signed-out and signed-in. It is
// the only writer of tokens to the settings store, and it rebuilds the API
// client after every change to the access token.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/naveenspark/rulekeeper/internal/settings"
	"github.com/naveenspark/rulekeeper/pkg/client"
	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// Clients is the part of client.Holder the manager needs.
type Clients interface {
	Current() *client.Client
	Rebuild() *client.Client
}

// Error is returned by every failed transition. Message is short and fit
// for display.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("session.%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("session.%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNoRefreshToken is wrapped when a refresh is attempted while signed out.
var ErrNoRefreshToken = errors.New("no refresh token")

// Result describes a successful login step.
type Result struct {
	// User is set when the server returned the signed-in user.
	User *domain.User
	// MFARequired means no tokens were issued yet. Complete the login with
	// VerifyMFA using MFAToken.
	MFARequired bool
	MFAToken    string
	Message     string
}

// Manager runs login, refresh and logout.
type Manager struct {
	store   *settings.Store
	clients Clients
	logger  *zap.Logger

	refreshGroup singleflight.Group
}

// NewManager creates a session manager.
func NewManager(store *settings.Store, clients Clients, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, clients: clients, logger: logger.Named("session")}
}

func fail(op string, err error) *Error {
	return &Error{Op: op, Message: client.UserMessage(err), Err: err}
}

// Login signs in with a username and password.
func (m *Manager) Login(ctx context.Context, username, password string) (*Result, error) {
	resp, err := m.clients.Current().Auth.Login(ctx, username, password)
	if err != nil {
		return nil, fail("Login", err)
	}
	return m.establish(ctx, "Login", resp)
}

// ExchangeOAuthCode completes a Discord sign-in with the code from the
// callback.
func (m *Manager) ExchangeOAuthCode(ctx context.Context, code string) (*Result, error) {
	if code == "" {
		return nil, &Error{Op: "ExchangeOAuthCode", Message: "missing authorization code"}
	}
	resp, err := m.clients.Current().Auth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fail("ExchangeOAuthCode", err)
	}
	return m.establish(ctx, "ExchangeOAuthCode", resp)
}

// VerifyMFA answers an MFA challenge from Login or ExchangeOAuthCode.
func (m *Manager) VerifyMFA(ctx context.Context, mfaToken, code string) (*Result, error) {
	resp, err := m.clients.Current().Auth.VerifyMFA(ctx, mfaToken, code)
	if err != nil {
		return nil, fail("VerifyMFA", err)
	}
	return m.establish(ctx, "VerifyMFA", resp)
}

// establish persists a login response. Without both tokens nothing is
// stored and the client is left alone. The identity is written before the
// tokens, and a failed token write clears the session, so a failure never
// leaves a signed-in store without the matching user.
func (m *Manager) establish(ctx context.Context, op string, resp *domain.AuthResponse) (*Result, error) {
	if !resp.HasTokens() {
		if resp != nil && bool(resp.MFARequired) {
			m.logger.Info("mfa required", zap.String("op", op))
			return &Result{MFARequired: true, MFAToken: resp.MFAToken, Message: resp.Message}, nil
		}
		msg := "server did not return tokens"
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		return nil, &Error{Op: op, Message: msg}
	}

	if resp.User != nil {
		u := resp.User
		if err := m.store.SaveUserIdentity(ctx, u.ID, u.Username, bool(u.IsAdmin)); err != nil {
			return nil, &Error{Op: op, Message: "could not save session", Err: err}
		}
	}
	if err := m.store.SaveTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		if clearErr := m.store.ClearSession(context.WithoutCancel(ctx)); clearErr != nil {
			m.logger.Warn("clear partial session", zap.String("op", op), zap.Error(clearErr))
		}
		m.clients.Rebuild()
		return nil, &Error{Op: op, Message: "could not save session", Err: err}
	}
	m.clients.Rebuild()

	fields := []zap.Field{zap.String("op", op)}
	if resp.User != nil {
		fields = append(fields, zap.String("user_id", resp.User.ID))
	}
	m.logger.Info("signed in", fields...)
	return &Result{User: resp.User, Message: resp.Message}, nil
}

// refreshTimeout bounds a shared refresh, which runs detached from any
// one caller's context.
const refreshTimeout = 30 * time.Second

// Refresh trades refreshToken, or the stored one when empty, for a new
// access token. Concurrent calls share one request, and a caller that gives
// up only stops waiting for it. A failure leaves the stored session
// untouched; signing out is up to the caller.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		rt, err := m.store.RefreshToken(ctx)
		if err != nil {
			return &Error{Op: "Refresh", Message: "could not read session", Err: err}
		}
		refreshToken = rt
	}
	if refreshToken == "" {
		return &Error{Op: "Refresh", Message: "not signed in", Err: ErrNoRefreshToken}
	}

	ch := m.refreshGroup.DoChan(refreshToken, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return nil, m.refresh(rctx, refreshToken)
	})
	select {
	case res := <-ch:
		if res.Shared {
			m.logger.Debug("refresh shared with in-flight call")
		}
		return res.Err
	case <-ctx.Done():
		return fail("Refresh", ctx.Err())
	}
}

func (m *Manager) refresh(ctx context.Context, refreshToken string) error {
	resp, err := m.clients.Current().Auth.Refresh(ctx, refreshToken)
	if err != nil {
		return fail("Refresh", err)
	}
	if resp.AccessToken == "" {
		return &Error{Op: "Refresh", Message: "server did not return an access token"}
	}

	next := refreshToken
	if resp.RefreshToken != "" {
		next = resp.RefreshToken
	}
	if err := m.store.SaveTokens(ctx, resp.AccessToken, next); err != nil {
		return &Error{Op: "Refresh", Message: "could not save session", Err: err}
	}
	m.clients.Rebuild()
	m.logger.Info("access token refreshed")
	return nil
}

// Logout tells the server to drop the session, ignoring any failure, and
// then always clears local state. The local clear is not cancelled by ctx.
func (m *Manager) Logout(ctx context.Context) error {
	rt, err := m.store.RefreshToken(ctx)
	if err != nil {
		m.logger.Warn("read refresh token for logout", zap.Error(err))
	}
	if err := m.clients.Current().Auth.Logout(ctx, rt); err != nil {
		m.logger.Info("remote logout failed, clearing local session anyway", zap.Error(err))
	}

	clearErr := m.store.ClearSession(context.WithoutCancel(ctx))
	m.clients.Rebuild()
	if clearErr != nil {
		return &Error{Op: "Logout", Message: "could not clear session", Err: clearErr}
	}
	m.logger.Info("signed out")
	return nil
}

// IsAuthenticated reports whether an access token is stored.
func (m *Manager) IsAuthenticated(ctx context.Context) (bool, error) {
	tok, err := m.store.AccessToken(ctx)
	if err != nil {
		return false, &Error{Op: "IsAuthenticated", Message: "could not read session", Err: err}
	}
	return tok != "", nil
}

// AccessTokenExpiry reads the exp claim of the stored access token without
// verifying its signature. ok is false for a missing or opaque token.
// The result is informational only and never used for authorization.
func (m *Manager) AccessTokenExpiry(ctx context.Context) (exp time.Time, ok bool, err error) {
	tok, err := m.store.AccessToken(ctx)
	if err != nil {
		return time.Time{}, false, &Error{Op: "AccessTokenExpiry", Message: "could not read session", Err: err}
	}
	exp, ok = TokenExpiry(tok)
	return exp, ok, nil
}

// TokenExpiry returns the exp claim of a JWT, unverified.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
