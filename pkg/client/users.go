package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// UserService manages dashboard accounts. Admin only.
type UserService struct{ c *Client }

// List returns dashboard accounts.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var users []domain.User
	if err := s.c.get(ctx, "/users?"+params.Encode(), &users); err != nil {
		return nil, fmt.Errorf("client.Users.List: %w", err)
	}
	return users, nil
}

// Get fetches one account.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := s.c.get(ctx, "/users/"+url.PathEscape(id), &u); err != nil {
		return nil, fmt.Errorf("client.Users.Get: %w", err)
	}
	return &u, nil
}

// Update changes an account's admin flag or disabled state.
func (s *UserService) Update(ctx context.Context, id string, u domain.UserUpdate) (*domain.User, error) {
	var out domain.User
	if err := s.c.patch(ctx, "/users/"+url.PathEscape(id), u, &out); err != nil {
		return nil, fmt.Errorf("client.Users.Update: %w", err)
	}
	return &out, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.c.delete(ctx, "/users/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("client.Users.Delete: %w", err)
	}
	return nil
}

// SettingsService reads and writes the user's dashboard preferences.
type SettingsService struct{ c *Client }

// Get returns the preferences.
func (s *SettingsService) Get(ctx context.Context) (*domain.AppSettings, error) {
	var st domain.AppSettings
	if err := s.c.get(ctx, "/settings", &st); err != nil {
		return nil, fmt.Errorf("client.Settings.Get: %w", err)
	}
	return &st, nil
}

// Update replaces the preferences.
func (s *SettingsService) Update(ctx context.Context, st domain.AppSettings) (*domain.AppSettings, error) {
	var out domain.AppSettings
	if err := s.c.put(ctx, "/settings", st, &out); err != nil {
		return nil, fmt.Errorf("client.Settings.Update: %w", err)
	}
	return &out, nil
}
