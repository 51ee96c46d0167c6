package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// FormService manages application forms and their responses.
type FormService struct{ c *Client }

// List returns the guild's forms.
func (s *FormService) List(ctx context.Context, guildID string) ([]domain.Form, error) {
	var forms []domain.Form
	if err := s.c.get(ctx, guildPath(guildID, "forms"), &forms); err != nil {
		return nil, fmt.Errorf("client.Forms.List: %w", err)
	}
	return forms, nil
}

// Get fetches one form with its questions.
func (s *FormService) Get(ctx context.Context, guildID, formID string) (*domain.Form, error) {
	var f domain.Form
	if err := s.c.get(ctx, guildPath(guildID, "forms", formID), &f); err != nil {
		return nil, fmt.Errorf("client.Forms.Get: %w", err)
	}
	return &f, nil
}

// Create creates a form.
func (s *FormService) Create(ctx context.Context, guildID string, req domain.CreateFormRequest) (*domain.Form, error) {
	var f domain.Form
	if err := s.c.post(ctx, guildPath(guildID, "forms"), req, &f); err != nil {
		return nil, fmt.Errorf("client.Forms.Create: %w", err)
	}
	return &f, nil
}

// Delete removes a form and its responses.
func (s *FormService) Delete(ctx context.Context, guildID, formID string) error {
	if err := s.c.delete(ctx, guildPath(guildID, "forms", formID)); err != nil {
		return fmt.Errorf("client.Forms.Delete: %w", err)
	}
	return nil
}

// Responses returns submissions for a form.
func (s *FormService) Responses(ctx context.Context, guildID, formID string, limit, offset int) ([]domain.FormResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var out []domain.FormResponse
	if err := s.c.get(ctx, guildPath(guildID, "forms", formID, "responses")+"?"+params.Encode(), &out); err != nil {
		return nil, fmt.Errorf("client.Forms.Responses: %w", err)
	}
	return out, nil
}
