package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvEntry struct {
	Key       string     `gorm:"column:key;primaryKey"`
	Value     string     `gorm:"column:value;not null"`
	UpdatedAt *time.Time `gorm:"column:updated_at"`
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// KVRepository is a string key-value store over the kv_entries table.
type KVRepository struct {
	database *gorm.DB
	now      func() time.Time
}

func NewKVRepository(database *gorm.DB) *KVRepository {
	return &KVRepository{database: database, now: time.Now}
}

// Get returns the stored value and whether the key exists.
func (repo *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry kvEntry
	err := repo.database.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// GetMany returns the stored values for the keys that exist.
func (repo *KVRepository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	values := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	entries := make([]kvEntry, 0, len(keys))
	if err := repo.database.WithContext(ctx).Where("key IN ?", keys).Find(&entries).Error; err != nil {
		return nil, err
	}
	for _, entry := range entries {
		values[entry.Key] = entry.Value
	}
	return values, nil
}

func (repo *KVRepository) Set(ctx context.Context, key string, value string) error {
	return repo.SetMany(ctx, map[string]string{key: value})
}

func (repo *KVRepository) SetMany(ctx context.Context, values map[string]string) error {
	return repo.Update(ctx, values, nil)
}

func (repo *KVRepository) Delete(ctx context.Context, keys ...string) error {
	return repo.Update(ctx, nil, keys)
}

// Update upserts set and removes remove in one transaction.
func (repo *KVRepository) Update(ctx context.Context, set map[string]string, remove []string) error {
	if len(set) == 0 && len(remove) == 0 {
		return nil
	}

	updatedAt := repo.now().UTC()
	entries := make([]kvEntry, 0, len(set))
	for key, value := range set {
		entries = append(entries, kvEntry{Key: key, Value: value, UpdatedAt: &updatedAt})
	}

	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(remove) > 0 {
			if err := tx.Where("key IN ?", remove).Delete(&kvEntry{}).Error; err != nil {
				return err
			}
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entries).Error
	})
}

// Keys lists every stored key in lexical order.
func (repo *KVRepository) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)
	if err := repo.database.WithContext(ctx).Model(&kvEntry{}).Order("key ASC").Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
