package substrate

import (
	"context"
	"errors"
	"fmt"

	"smart-dpr-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubstrate persists blobs as single rows in the kv_blobs table. Set is
// an upsert on the primary key so the whole-value-per-key contract holds.
type GormSubstrate struct {
	db *gorm.DB
}

func NewGormSubstrate(db *gorm.DB) *GormSubstrate {
	return &GormSubstrate{db: db}
}

func (s *GormSubstrate) Get(ctx context.Context, key string) (string, bool, error) {
	var row model.KvBlob
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return string(row.Value), true, nil
}

func (s *GormSubstrate) Set(ctx context.Context, key string, value string) error {
	row := model.KvBlob{
		Key:   key,
		Value: datatypes.JSON([]byte(value)),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *GormSubstrate) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&model.KvBlob{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}
