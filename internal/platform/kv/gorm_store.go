package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryModel is the GORM row backing GormStore.
type EntryModel struct {
	Key   string `gorm:"primaryKey;column:key;size:512"`
	Value string `gorm:"column:value;type:text;not null"`
}

// TableName pins the table name regardless of GORM naming strategy.
func (EntryModel) TableName() string { return "kv_store" }

// GormStore implements Store on a single SQL table (Postgres or SQLite).
type GormStore struct {
	db *gorm.DB
}

// GormStoreがStoreを実装していることをコンパイル時に検証します。
var _ Store = (*GormStore)(nil)

// NewGormStore creates a GormStore. The kv_store table must exist; see AutoMigrate.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates the kv_store table when it is missing.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&EntryModel{})
}

// Get retrieves and decodes the value stored at key.
func (s *GormStore) Get(ctx context.Context, key string, dst any) error {
	var row EntryModel
	if err := s.db.WithContext(ctx).Where(`"key" = ?`, key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("select %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(row.Value), dst); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// Set upserts value at key.
func (s *GormStore) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	row := EntryModel{Key: key, Value: string(b)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *GormStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where(`"key" = ?`, key).Delete(&EntryModel{}).Error; err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// GetByPrefix returns all rows whose key starts with prefix.
func (s *GormStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	var rows []EntryModel
	err := s.db.WithContext(ctx).
		Where(`"key" LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Order(`"key"`).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("select prefix %q: %w", prefix, err)
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{Key: r.Key, Value: json.RawMessage(r.Value)})
	}
	return out, nil
}

// escapeLike escapes LIKE wildcards so that prefix is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}
