package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"roster/internal/model"
	"roster/internal/storage"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "students.v1"

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T) (*RosterStore, *storage.Memory) {
	t.Helper()
	blob := storage.NewMemory()
	store := NewRosterStore(blob, testKey, WithIDGenerator(sequentialIDs()))
	require.NoError(t, store.Load(context.Background()))
	return store, blob
}

type failingBlob struct {
	getErr error
	putErr error
}

func (f failingBlob) Get(context.Context, string) ([]byte, error) { return nil, f.getErr }

func (f failingBlob) Put(context.Context, string, []byte) error    { return f.putErr }

func TestLoadMissingKeyIsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Students())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, blob := newTestStore(t)

	roster := []model.Student{
		{ID: "a", Name: "Alice", Code: "S1", Major: "Math", GPA: model.Float(3.75)},
		{ID: "b", Name: "Bob", Code: "S2"},
		{ID: "c", Name: "Chà <b>", Code: "S'3", Major: "\"Art\" & Design", GPA: model.Float(0)},
		{ID: "d", Name: "Dan", Code: "S4", GPA: model.Float(4)},
	}
	for _, s := range roster {
		require.NoError(t, store.Upsert(ctx, s))
	}

	reloaded := NewRosterStore(blob, testKey)
	require.NoError(t, reloaded.Load(ctx))

	if diff := cmp.Diff(roster, reloaded.Students()); diff != "" {
		t.Errorf("roster changed across save/load (-want +got):\n%s", diff)
	}
}

func TestLoadCorruptBlob(t *testing.T) {
	ctx := context.Background()
	blob := storage.NewMemory()
	require.NoError(t, blob.Put(ctx, testKey, []byte("{not json")))

	store := NewRosterStore(blob, testKey)
	err := store.Load(ctx)
	require.ErrorIs(t, err, ErrCorruptRoster)
	assert.Equal(t, 0, store.Len())

	preserved, err := blob.Get(ctx, store.CorruptKey())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(preserved))
}

func TestLoadReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	store := NewRosterStore(failingBlob{getErr: boom}, testKey)

	err := store.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrCorruptRoster)
}

func TestSaveEmptyWritesArray(t *testing.T) {
	ctx := context.Background()
	store, blob := newTestStore(t)
	require.NoError(t, store.Clear(ctx))

	b, err := blob.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestUpsertReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Upsert(ctx, model.Student{ID: "a", Name: "A", Code: "1"}))
	require.NoError(t, store.Upsert(ctx, model.Student{ID: "b", Name: "B", Code: "2"}))
	require.NoError(t, store.Upsert(ctx, model.Student{ID: "a", Name: "A2", Code: "1", GPA: model.Float(1)}))

	got := store.Students()
	require.Len(t, got, 2)
	assert.Equal(t, "A2", got[0].Name)
	assert.Equal(t, "B", got[1].Name)
}

func TestUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	rec := model.Student{ID: "x", Name: "X", Code: "X1", GPA: model.Float(2.5)}
	require.NoError(t, store.Upsert(ctx, model.Student{ID: "first", Name: "F", Code: "F1"}))
	require.NoError(t, store.Upsert(ctx, rec))
	once := store.Students()
	require.NoError(t, store.Upsert(ctx, rec))

	assert.Equal(t, once, store.Students())
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store, blob := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, model.Student{ID: "a", Name: "A", Code: "1"}))
	require.NoError(t, store.Upsert(ctx, model.Student{ID: "b", Name: "B", Code: "2"}))
	snapshot := store.Students()

	require.NoError(t, store.Remove(ctx, "a"))
	assert.Equal(t, []model.Student{{ID: "b", Name: "B", Code: "2"}}, store.Students())
	assert.Equal(t, "a", snapshot[0].ID, "snapshots are not affected by later mutations")

	require.NoError(t, store.Remove(ctx, "missing"))
	assert.Equal(t, 1, store.Len())

	reloaded := NewRosterStore(blob, testKey)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, store.Students(), reloaded.Students())
}

func TestSeedAndClear(t *testing.T) {
	ctx := context.Background()
	blob := storage.NewMemory()
	store := NewRosterStore(blob, testKey)
	require.NoError(t, store.Load(ctx))

	seeded, err := store.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)
	require.Equal(t, 3, store.Len())

	ids := map[string]bool{}
	for _, s := range store.Students() {
		assert.NotEmpty(t, s.ID)
		ids[s.ID] = true
	}
	assert.Len(t, ids, 3, "seeded ids are distinct")

	seeded, err = store.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, 3, store.Len())

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 0, store.Len())

	reloaded := NewRosterStore(blob, testKey)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, 0, reloaded.Len())
}

func TestSeedSkipsNonEmptyRoster(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, model.Student{ID: "a", Name: "A", Code: "1"}))

	seeded, err := store.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, 1, store.Len())
}

func TestMutationsReportWriteErrors(t *testing.T) {
	boom := errors.New("read-only")
	store := NewRosterStore(failingBlob{getErr: storage.ErrNotFound, putErr: boom}, testKey)
	require.NoError(t, store.Load(context.Background()))

	err := store.Upsert(context.Background(), model.Student{ID: "a", Name: "A", Code: "1"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, store.Len(), "the in-memory roster keeps the change")
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.Upsert(ctx, model.Student{ID: "a", Name: "A", Code: "1"}))

	s, ok := store.Find("a")
	assert.True(t, ok)
	assert.Equal(t, "A", s.Name)

	_, ok = store.Find("zzz")
	assert.False(t, ok)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	store := NewRosterStore(storage.NewMemory(), testKey)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := store.NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
