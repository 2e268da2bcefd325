package storage

import (
	"context"
	"fmt"

	"roster/internal/config"
	"roster/internal/database"
)

// Open returns the driver selected by cfg and a function releasing it.
func Open(ctx context.Context, cfg config.Storage) (Blob, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), noop, nil
	case DriverFile:
		f, err := NewFile(cfg.FileDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file storage: %w", err)
		}
		return f, noop, nil
	case DriverSQLite, DriverPostgres:
		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewSQL(db), func() error { return database.Close(db) }, nil
	case DriverRedis:
		r, err := NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis storage: %w", err)
		}
		return r, r.Close, nil
	case DriverS3:
		s, err := NewS3(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open s3 storage: %w", err)
		}
		return s, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
