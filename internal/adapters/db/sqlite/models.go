package sqlite

import "time"

type StorageEntryModel struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (StorageEntryModel) TableName() string { return "storage_entries" }
