package model

import (
	"time"

	"gorm.io/datatypes"
)

// KvBlob is the database-backed variant of the history substrate: one row
// per storage key, the whole serialized store in the value column.
type KvBlob struct {
	Key       string         `gorm:"type:varchar(255);primaryKey"`
	Value     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (KvBlob) TableName() string {
	return "kv_blobs"
}
