package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rubberstock/models"
)

// GormStore keeps the order as a JSON array in the settings table.
type GormStore struct {
	db  *gorm.DB
	key string
}

// NewGormStore returns a Store backed by db. The settings table must already
// be migrated (see db.AutoMigrateState).
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("order: database handle is nil")
	}
	return &GormStore{db: db, key: Key}, nil
}

// Load implements Store.
func (s *GormStore) Load(ctx context.Context) ([]string, error) {
	var setting models.Setting
	err := s.db.WithContext(ctx).Where("setting_key = ?", s.key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("order: load: %w", err)
	}

	ids := []string{}
	if err := json.Unmarshal([]byte(setting.Value), &ids); err != nil {
		return nil, fmt.Errorf("order: decode saved order: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Save implements Store.
func (s *GormStore) Save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	encoded, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("order: encode: %w", err)
	}

	setting := models.Setting{Key: s.key, Value: string(encoded)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("order: save: %w", err)
	}
	return nil
}

// Clear removes the saved order so the next load re-seeds it from the server.
func (s *GormStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("setting_key = ?", s.key).Delete(&models.Setting{}).Error; err != nil {
		return fmt.Errorf("order: clear: %w", err)
	}
	return nil
}
