package models

import "time"

// KVEntry backs the SQL key-value store. Values are opaque strings, usually JSON.
type KVEntry struct {
	Key       string     `gorm:"column:entry_key;type:varchar(512);primaryKey"`
	Value     string     `gorm:"type:text;not null"`
	ExpiresAt *time.Time `gorm:"index"`
	UpdatedAt time.Time  `gorm:"not null"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

func (e *KVEntry) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}
