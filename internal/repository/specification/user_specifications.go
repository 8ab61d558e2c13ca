package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByGoogleId struct {
	GoogleId string
}

func (s ByGoogleId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("google_id = ?", s.GoogleId)
}

type ById struct {
	Id uuid.UUID
}

func (s ById) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.Id)
}
