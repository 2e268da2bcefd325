package storage

import (
	"context"
	"errors"
	"time"

	"roster/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL keeps slots as rows of the roster_blobs table. The table is created by
// database.InitDB.
type SQL struct {
	db *gorm.DB
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.BlobEntry
	err := s.db.WithContext(ctx).Where("storage_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *SQL) Put(ctx context.Context, key string, value []byte) error {
	entry := model.BlobEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
