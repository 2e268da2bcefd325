package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"roster/internal/logging"
	"roster/internal/model"
	"roster/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCorruptRoster is returned by Load when the stored blob cannot be
// decoded. The store is left empty and the raw bytes are copied to
// CorruptKey.
var ErrCorruptRoster = errors.New("stored roster is corrupt")

// RosterStore owns the ordered list of students and writes it back to a
// single storage slot after every mutation. It is not safe for concurrent
// use; callers serialize access.
type RosterStore struct {
	blob     storage.Blob
	key      string
	students []model.Student
	newID    func() string
	logger   *zap.Logger
}

type StoreOption func(*RosterStore)

// WithIDGenerator replaces the UUIDv7 generator, mostly for tests.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *RosterStore) { s.newID = fn }
}

func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *RosterStore) { s.logger = logging.OrNop(logger) }
}

func NewRosterStore(blob storage.Blob, key string, opts ...StoreOption) *RosterStore {
	s := &RosterStore{
		blob:   blob,
		key:    key,
		newID:  newUUID,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newUUID yields a time-ordered id: 48 bits of milliseconds then random bits.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewID returns a fresh record id.
func (s *RosterStore) NewID() string {
	return s.newID()
}

func (s *RosterStore) Key() string {
	return s.key
}

// CorruptKey is where an undecodable blob is preserved.
func (s *RosterStore) CorruptKey() string {
	return s.key + ".corrupt"
}

// Load replaces the in-memory roster with the stored one. A missing slot
// yields an empty roster.
func (s *RosterStore) Load(ctx context.Context) error {
	s.students = nil

	b, err := s.blob.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug("no stored roster", zap.String("key", s.key))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read roster %s: %w", s.key, err)
	}

	var students []model.Student
	if err := json.Unmarshal(b, &students); err != nil {
		s.logger.Warn("stored roster is corrupt, starting empty",
			zap.String("key", s.key), zap.Error(err))
		if perr := s.blob.Put(ctx, s.CorruptKey(), b); perr != nil {
			s.logger.Error("failed to preserve corrupt roster", zap.Error(perr))
		}
		return fmt.Errorf("%w: %v", ErrCorruptRoster, err)
	}

	s.students = students
	s.logger.Debug("roster loaded", zap.String("key", s.key), zap.Int("count", len(students)))
	return nil
}

// Save overwrites the slot with the current roster.
func (s *RosterStore) Save(ctx context.Context) error {
	students := s.students
	if students == nil {
		students = []model.Student{}
	}
	b, err := json.Marshal(students)
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := s.blob.Put(ctx, s.key, b); err != nil {
		return fmt.Errorf("write roster %s: %w", s.key, err)
	}
	return nil
}

// Students returns a snapshot of the roster in insertion order.
func (s *RosterStore) Students() []model.Student {
	out := make([]model.Student, len(s.students))
	copy(out, s.students)
	return out
}

func (s *RosterStore) Len() int {
	return len(s.students)
}

func (s *RosterStore) Find(id string) (model.Student, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.students[i], true
	}
	return model.Student{}, false
}

func (s *RosterStore) indexOf(id string) int {
	for i := range s.students {
		if s.students[i].ID == id {
			return i
		}
	}
	return -1
}

// Upsert replaces the record with the same id in place, or appends it.
func (s *RosterStore) Upsert(ctx context.Context, student model.Student) error {
	s.put(student)
	return s.Save(ctx)
}

func (s *RosterStore) put(student model.Student) {
	if i := s.indexOf(student.ID); i >= 0 {
		s.students[i] = student
	} else {
		s.students = append(s.students, student)
	}
}

// Remove drops the record with id, if present.
func (s *RosterStore) Remove(ctx context.Context, id string) error {
	if i := s.indexOf(id); i >= 0 {
		s.students = append(s.students[:i:i], s.students[i+1:]...)
	}
	return s.Save(ctx)
}

// Seed fills an empty roster with example records. It reports whether it
// did anything.
func (s *RosterStore) Seed(ctx context.Context) (bool, error) {
	if len(s.students) > 0 {
		return false, nil
	}
	s.students = []model.Student{
		{ID: s.newID(), Name: "Nguyen Van A", Code: "SV2025001", Major: "Computer Science", GPA: model.Float(3.2)},
		{ID: s.newID(), Name: "Tran Thi B", Code: "SV2025002", Major: "Information Systems", GPA: model.Float(2.1)},
		{ID: s.newID(), Name: "Vo Minh Trung", Code: "SV2025003", Major: "Software Engineering", GPA: model.Float(3.8)},
	}
	return true, s.Save(ctx)
}

// Clear empties the roster. Callers confirm with the user first.
func (s *RosterStore) Clear(ctx context.Context) error {
	s.students = nil
	return s.Save(ctx)
}

// UpsertBatch applies Upsert for each record and saves once.
func (s *RosterStore) UpsertBatch(ctx context.Context, students []model.Student) error {
	for _, student := range students {
		s.put(student)
	}
	return s.Save(ctx)
}
