package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// RoleService lists roles and manages join roles.
type RoleService struct{ c *Client }

// List returns the guild's roles, highest first as Discord orders them.
func (s *RoleService) List(ctx context.Context, guildID string) ([]domain.Role, error) {
	var roles []domain.Role
	if err := s.c.get(ctx, guildPath(guildID, "roles"), &roles); err != nil {
		return nil, fmt.Errorf("client.Roles.List: %w", err)
	}
	return roles, nil
}

// AutoRoles returns the join roles.
func (s *RoleService) AutoRoles(ctx context.Context, guildID string) (*domain.AutoRoles, error) {
	var ar domain.AutoRoles
	if err := s.c.get(ctx, guildPath(guildID, "roles", "auto"), &ar); err != nil {
		return nil, fmt.Errorf("client.Roles.AutoRoles: %w", err)
	}
	return &ar, nil
}

// SetAutoRoles replaces the join roles.
func (s *RoleService) SetAutoRoles(ctx context.Context, guildID string, ar domain.AutoRoles) (*domain.AutoRoles, error) {
	var out domain.AutoRoles
	if err := s.c.put(ctx, guildPath(guildID, "roles", "auto"), ar, &out); err != nil {
		return nil, fmt.Errorf("client.Roles.SetAutoRoles: %w", err)
	}
	return &out, nil
}

// RoleMenuService manages self-assign role menus.
type RoleMenuService struct{ c *Client }

// List returns the guild's role menus.
func (s *RoleMenuService) List(ctx context.Context, guildID string) ([]domain.RoleMenu, error) {
	var menus []domain.RoleMenu
	if err := s.c.get(ctx, guildPath(guildID, "role-menus"), &menus); err != nil {
		return nil, fmt.Errorf("client.RoleMenus.List: %w", err)
	}
	return menus, nil
}

// Create posts a new role menu.
func (s *RoleMenuService) Create(ctx context.Context, guildID string, m domain.RoleMenu) (*domain.RoleMenu, error) {
	var out domain.RoleMenu
	if err := s.c.post(ctx, guildPath(guildID, "role-menus"), m, &out); err != nil {
		return nil, fmt.Errorf("client.RoleMenus.Create: %w", err)
	}
	return &out, nil
}

// Update edits an existing role menu; the bot re-renders its message.
func (s *RoleMenuService) Update(ctx context.Context, guildID string, m domain.RoleMenu) (*domain.RoleMenu, error) {
	var out domain.RoleMenu
	if err := s.c.put(ctx, guildPath(guildID, "role-menus", m.ID), m, &out); err != nil {
		return nil, fmt.Errorf("client.RoleMenus.Update: %w", err)
	}
	return &out, nil
}

// Delete removes a role menu and its message.
func (s *RoleMenuService) Delete(ctx context.Context, guildID, id string) error {
	if err := s.c.delete(ctx, guildPath(guildID, "role-menus", id)); err != nil {
		return fmt.Errorf("client.RoleMenus.Delete: %w", err)
	}
	return nil
}

// PermissionService manages role-based access to commands and the dashboard.
type PermissionService struct{ c *Client }

// List returns the guild's permission rules.
func (s *PermissionService) List(ctx context.Context, guildID string) ([]domain.PermissionRule, error) {
	var rules []domain.PermissionRule
	if err := s.c.get(ctx, guildPath(guildID, "permissions"), &rules); err != nil {
		return nil, fmt.Errorf("client.Permissions.List: %w", err)
	}
	return rules, nil
}

// Replace overwrites the guild's permission rules.
func (s *PermissionService) Replace(ctx context.Context, guildID string, rules []domain.PermissionRule) ([]domain.PermissionRule, error) {
	var out []domain.PermissionRule
	if err := s.c.put(ctx, guildPath(guildID, "permissions"), rules, &out); err != nil {
		return nil, fmt.Errorf("client.Permissions.Replace: %w", err)
	}
	return out, nil
}
