package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// TicketService lists tickets and manages the ticket system configuration.
type TicketService struct{ c *Client }

// List returns tickets, optionally filtered by status.
func (s *TicketService) List(ctx context.Context, guildID, status string) ([]domain.Ticket, error) {
	path := guildPath(guildID, "tickets")
	if status != "" {
		params := url.Values{}
		params.Set("status", status)
		path += "?" + params.Encode()
	}
	var tickets []domain.Ticket
	if err := s.c.get(ctx, path, &tickets); err != nil {
		return nil, fmt.Errorf("client.Tickets.List: %w", err)
	}
	return tickets, nil
}

// Close closes a ticket, with an optional reason posted to the transcript.
func (s *TicketService) Close(ctx context.Context, guildID, ticketID, reason string) error {
	var body any
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	if err := s.c.post(ctx, guildPath(guildID, "tickets", ticketID, "close"), body, nil); err != nil {
		return fmt.Errorf("client.Tickets.Close: %w", err)
	}
	return nil
}

// Config returns the ticket system configuration.
func (s *TicketService) Config(ctx context.Context, guildID string) (*domain.TicketConfig, error) {
	var cfg domain.TicketConfig
	if err := s.c.get(ctx, guildPath(guildID, "tickets", "config"), &cfg); err != nil {
		return nil, fmt.Errorf("client.Tickets.Config: %w", err)
	}
	return &cfg, nil
}

// UpdateConfig replaces the ticket system configuration.
func (s *TicketService) UpdateConfig(ctx context.Context, guildID string, cfg domain.TicketConfig) (*domain.TicketConfig, error) {
	var out domain.TicketConfig
	if err := s.c.put(ctx, guildPath(guildID, "tickets", "config"), cfg, &out); err != nil {
		return nil, fmt.Errorf("client.Tickets.UpdateConfig: %w", err)
	}
	return &out, nil
}
