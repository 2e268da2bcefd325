package model

import "time"

// BlobEntry is the SQL row behind one storage slot.
type BlobEntry struct {
	Key       string `gorm:"column:storage_key;primaryKey;size:255"`
	Value     []byte
	UpdatedAt time.Time
}

func (BlobEntry) TableName() string {
	return "roster_blobs"
}
