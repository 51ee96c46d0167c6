package client

import (
	"context"
	"fmt"

	"github.com/naveenspark/rulekeeper/pkg/domain"
)

// BackupService creates, restores and deletes guild backups.
type BackupService struct{ c *Client }

// List returns the guild's backups, newest first.
func (s *BackupService) List(ctx context.Context, guildID string) ([]domain.Backup, error) {
	var backups []domain.Backup
	if err := s.c.get(ctx, guildPath(guildID, "backups"), &backups); err != nil {
		return nil, fmt.Errorf("client.Backups.List: %w", err)
	}
	return backups, nil
}

// Create takes a new backup.
func (s *BackupService) Create(ctx context.Context, guildID string, req domain.CreateBackupRequest) (*domain.Backup, error) {
	var b domain.Backup
	if err := s.c.post(ctx, guildPath(guildID, "backups"), req, &b); err != nil {
		return nil, fmt.Errorf("client.Backups.Create: %w", err)
	}
	return &b, nil
}

// Restore starts restoring a backup. The restore itself runs server side.
func (s *BackupService) Restore(ctx context.Context, guildID, backupID string, opts domain.RestoreOptions) error {
	if err := s.c.post(ctx, guildPath(guildID, "backups", backupID, "restore"), opts, nil); err != nil {
		return fmt.Errorf("client.Backups.Restore: %w", err)
	}
	return nil
}

// Delete removes a backup.
func (s *BackupService) Delete(ctx context.Context, guildID, backupID string) error {
	if err := s.c.delete(ctx, guildPath(guildID, "backups", backupID)); err != nil {
		return fmt.Errorf("client.Backups.Delete: %w", err)
	}
	return nil
}
