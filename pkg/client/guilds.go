package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// GuildService lists the guilds the user manages.
type GuildService struct{ c *Client }

// List returns the guilds the signed-in user can manage.
func (s *GuildService) List(ctx context.Context) ([]domain.Guild, error) {
	var guilds []domain.Guild
	if err := s.c.get(ctx, "/guilds", &guilds); err != nil {
		return nil, fmt.Errorf("client.Guilds.List: %w", err)
	}
	return guilds, nil
}

// Get fetches a single guild by ID.
func (s *GuildService) Get(ctx context.Context, guildID string) (*domain.Guild, error) {
	var g domain.Guild
	if err := s.c.get(ctx, "/guilds/"+url.PathEscape(guildID), &g); err != nil {
		return nil, fmt.Errorf("client.Guilds.Get: %w", err)
	}
	return &g, nil
}

// Channels returns the guild's channels.
func (s *GuildService) Channels(ctx context.Context, guildID string) ([]domain.Channel, error) {
	var channels []domain.Channel
	if err := s.c.get(ctx, guildPath(guildID, "channels"), &channels); err != nil {
		return nil, fmt.Errorf("client.Guilds.Channels: %w", err)
	}
	return channels, nil
}

// Stats returns the guild's overview counters.
func (s *GuildService) Stats(ctx context.Context, guildID string) (*domain.GuildStats, error) {
	var stats domain.GuildStats
	if err := s.c.get(ctx, guildPath(guildID, "stats"), &stats); err != nil {
		return nil, fmt.Errorf("client.Guilds.Stats: %w", err)
	}
	return &stats, nil
}

// CommandService manages per-guild command settings.
type CommandService struct{ c *Client }

// List returns every command with its settings for the guild.
func (s *CommandService) List(ctx context.Context, guildID string) ([]domain.Command, error) {
	var cmds []domain.Command
	if err := s.c.get(ctx, guildPath(guildID, "commands"), &cmds); err != nil {
		return nil, fmt.Errorf("client.Commands.List: %w", err)
	}
	return cmds, nil
}

// Update changes one command's settings.
func (s *CommandService) Update(ctx context.Context, guildID, name string, u domain.CommandUpdate) (*domain.Command, error) {
	var cmd domain.Command
	if err := s.c.put(ctx, guildPath(guildID, "commands", name), u, &cmd); err != nil {
		return nil, fmt.Errorf("client.Commands.Update: %w", err)
	}
	return &cmd, nil
}

// ConfigService reads and patches the general guild configuration.
type ConfigService struct{ c *Client }

// Get returns the guild configuration.
func (s *ConfigService) Get(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	var cfg domain.GuildConfig
	if err := s.c.get(ctx, guildPath(guildID, "config"), &cfg); err != nil {
		return nil, fmt.Errorf("client.Config.Get: %w", err)
	}
	return &cfg, nil
}

// Update applies a partial update and returns the resulting configuration.
func (s *ConfigService) Update(ctx context.Context, guildID string, p domain.GuildConfigPatch) (*domain.GuildConfig, error) {
	var cfg domain.GuildConfig
	if err := s.c.patch(ctx, guildPath(guildID, "config"), p, &cfg); err != nil {
		return nil, fmt.Errorf("client.Config.Update: %w", err)
	}
	return &cfg, nil
}
