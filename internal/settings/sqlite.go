package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Preference is one stored setting.
type Preference struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

type sqliteBackend struct {
	db *gorm.DB
}

// OpenSQLite opens dsn with the sqlite driver and migrates the
// preferences table. A plain file path gets its parent directory created.
func OpenSQLite(dsn string) (Backend, error) {
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, fmt.Errorf("settings: mkdir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("settings: open sqlite: %w", err)
	}
	return NewSQLite(db)
}

// NewSQLite builds a backend on an existing database handle.
func NewSQLite(db *gorm.DB) (Backend, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite backend requires database handle")
	}
	if err := db.AutoMigrate(&Preference{}); err != nil {
		return nil, fmt.Errorf("settings: migrate: %w", err)
	}
	return &sqliteBackend{db: db}, nil
}

func (s *sqliteBackend) Load(ctx context.Context, key string) (string, bool, error) {
	var p Preference
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p.Value, true, nil
}

func (s *sqliteBackend) Apply(ctx context.Context, b Batch) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range b.Set {
			record := &Preference{Name: k, Value: v, UpdatedAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(record).Error
			if err != nil {
				return err
			}
		}
		if len(b.Delete) > 0 {
			if err := tx.Where("name IN ?", b.Delete).Delete(&Preference{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *sqliteBackend) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
