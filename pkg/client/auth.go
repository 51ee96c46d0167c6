package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// AuthService groups the authentication endpoints.
type AuthService struct{ c *Client }

// Login signs in with a username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	req := domain.LoginRequest{Username: username, Password: password}
	if err := s.c.post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Auth.Login: %w", err)
	}
	return &resp, nil
}

// ExchangeCode trades a one-time OAuth authorization code for tokens.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := s.c.post(ctx, "/auth/oauth/exchange", map[string]string{"code": code}, &resp); err != nil {
		return nil, fmt.Errorf("client.Auth.ExchangeCode: %w", err)
	}
	return &resp, nil
}

// VerifyMFA completes a login that was answered with an MFA challenge.
func (s *AuthService) VerifyMFA(ctx context.Context, mfaToken, code string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	body := map[string]string{"mfa_token": mfaToken, "code": code}
	if err := s.c.post(ctx, "/auth/mfa/verify", body, &resp); err != nil {
		return nil, fmt.Errorf("client.Auth.VerifyMFA: %w", err)
	}
	return &resp, nil
}

// Refresh obtains a new access token from a refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := s.c.post(ctx, "/auth/refresh", map[string]string{"refresh_token": refreshToken}, &resp); err != nil {
		return nil, fmt.Errorf("client.Auth.Refresh: %w", err)
	}
	return &resp, nil
}

// Logout invalidates the session server side.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	var body any
	if refreshToken != "" {
		body = map[string]string{"refresh_token": refreshToken}
	}
	if err := s.c.post(ctx, "/auth/logout", body, nil); err != nil {
		return fmt.Errorf("client.Auth.Logout: %w", err)
	}
	return nil
}

// Me returns the signed-in user.
func (s *AuthService) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := s.c.get(ctx, "/auth/me", &u); err != nil {
		return nil, fmt.Errorf("client.Auth.Me: %w", err)
	}
	return &u, nil
}
