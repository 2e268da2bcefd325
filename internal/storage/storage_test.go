package storage

import (
	"context"
	"testing"

	"roster/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestBlobDrivers(t *testing.T) {
	drivers := map[string]func(t *testing.T) Blob{
		"memory": func(t *testing.T) Blob { return NewMemory() },
		"file": func(t *testing.T) Blob {
			f, err := NewFile(t.TempDir())
			require.NoError(t, err)
			return f
		},
		"sql": func(t *testing.T) Blob { return NewSQL(setupTestDB(t)) },
		"s3":  func(t *testing.T) Blob { return newFakeS3(t, "") },
		"s3 with prefix": func(t *testing.T) Blob {
			return newFakeS3(t, "rosters")
		},
	}

	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			blob := open(t)

			_, err := blob.Get(ctx, "students.v1")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, blob.Put(ctx, "students.v1", []byte(`[{"id":"a"}]`)))
			got, err := blob.Get(ctx, "students.v1")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"a"}]`, string(got))

			// Put replaces the previous value.
			require.NoError(t, blob.Put(ctx, "students.v1", []byte(`[]`)))
			got, err = blob.Get(ctx, "students.v1")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			// Keys are independent slots.
			_, err = blob.Get(ctx, "students.v1.corrupt")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", v))
	v[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileRejectsUnsafeKeys(t *testing.T) {
	f, err := NewFile(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "  ", "../escape", "/abs"} {
		assert.Error(t, f.Put(context.Background(), key, []byte("x")), "key %q", key)
	}
}

func TestOpenMemoryAndUnknown(t *testing.T) {
	ctx := context.Background()

	blob, closeFn, err := Open(ctx, configFor(DriverMemory))
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, blob)
	assert.NoError(t, closeFn())

	_, _, err = Open(ctx, configFor("etcd"))
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	cfg := configFor(DriverFile)
	cfg.FileDir = t.TempDir()

	blob, closeFn, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &File{}, blob)
}
