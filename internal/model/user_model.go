package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GoogleId           string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email              string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName           string    `gorm:"type:varchar(255);not null"`
	AvatarURL          *string   `gorm:"type:text"`
	Status             string    `gorm:"type:varchar(50);not null;default:'active'"`
	GoogleAccessToken  *string   `gorm:"type:text"`
	GoogleRefreshToken *string   `gorm:"type:text"`
	GoogleTokenExpiry  *time.Time
	LastLoginAt        *time.Time
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
