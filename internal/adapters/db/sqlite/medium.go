// Package sqlite keeps the storage medium in a single-table sqlite database so
// the record document survives between runs.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

var _ domain.StorageMedium = (*Medium)(nil)

type Medium struct {
	db *gorm.DB
}

func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: logger.Discard})
}

// OpenMedium opens path, applies migrations and returns the medium.
func OpenMedium(ctx context.Context, path string) (*Medium, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}
	return NewMedium(db), nil
}

func NewMedium(db *gorm.DB) *Medium {
	return &Medium{db: db}
}

func (m *Medium) Get(ctx context.Context, key string) (string, bool, error) {
	var row StorageEntryModel
	err := m.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

func (m *Medium) Set(ctx context.Context, key, value string) error {
	row := StorageEntryModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (m *Medium) Remove(ctx context.Context, key string) error {
	return m.db.WithContext(ctx).Where("key = ?", key).Delete(&StorageEntryModel{}).Error
}

func (m *Medium) Entries(ctx context.Context) ([]domain.StorageEntry, error) {
	rows := make([]StorageEntryModel, 0)
	if err := m.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.StorageEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.StorageEntry{Key: row.Key, Value: row.Value})
	}
	return result, nil
}

func (m *Medium) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
