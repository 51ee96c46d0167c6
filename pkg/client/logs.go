package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// LogService reads the audit log and its configuration.
type LogService struct{ c *Client }

// List returns log entries, optionally filtered by event type.
func (s *LogService) List(ctx context.Context, guildID, eventType string, limit, offset int) ([]domain.LogEntry, error) {
	params := url.Values{}
	if eventType != "" {
		params.Set("type", eventType)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var entries []domain.LogEntry
	if err := s.c.get(ctx, guildPath(guildID, "logs")+"?"+params.Encode(), &entries); err != nil {
		return nil, fmt.Errorf("client.Logs.List: %w", err)
	}
	return entries, nil
}

// Config returns the logging configuration.
func (s *LogService) Config(ctx context.Context, guildID string) (*domain.LogConfig, error) {
	var cfg domain.LogConfig
	if err := s.c.get(ctx, guildPath(guildID, "logs", "config"), &cfg); err != nil {
		return nil, fmt.Errorf("client.Logs.Config: %w", err)
	}
	return &cfg, nil
}

// UpdateConfig replaces the logging configuration.
func (s *LogService) UpdateConfig(ctx context.Context, guildID string, cfg domain.LogConfig) (*domain.LogConfig, error) {
	var out domain.LogConfig
	if err := s.c.put(ctx, guildPath(guildID, "logs", "config"), cfg, &out); err != nil {
		return nil, fmt.Errorf("client.Logs.UpdateConfig: %w", err)
	}
	return &out, nil
}
