package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/okian/paddock/internal/domain/model"
)

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithProfiles seeds the store with initial profiles. Seeding skips the
// duplicate check; last write wins on id collisions.
func WithProfiles(profiles []model.HorseProfile) Option {
	return func(s *MemStore) {
		for _, p := range profiles {
			s.profiles[p.ID] = p
		}
	}
}

// WithRecords seeds the store with historical training records. Records for
// unknown horses are dropped silently during seeding.
func WithRecords(records []model.TrainingRecord) Option {
	return func(s *MemStore) {
		for _, r := range records {
			if _, ok := s.profiles[r.HorseID]; ok {
				s.history[r.HorseID] = insertOrdered(s.history[r.HorseID], r)
			}
		}
	}
}

// MemStore implements Store with in-memory maps. Safe for concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	profiles map[string]model.HorseProfile
	history  map[string][]model.TrainingRecord
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		profiles: make(map[string]model.HorseProfile),
		history:  make(map[string][]model.TrainingRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProfile adds a new profile, rejecting duplicate ids.
func (s *MemStore) CreateProfile(_ context.Context, p model.HorseProfile) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: empty profile id", ErrInvalidRow)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[p.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
	}
	s.profiles[p.ID] = p
	return nil
}

// UpdateProfile replaces an existing profile.
func (s *MemStore) UpdateProfile(_ context.Context, p model.HorseProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[p.ID]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, p.ID)
	}
	s.profiles[p.ID] = p
	return nil
}

// DeleteProfile removes a profile and its history.
func (s *MemStore) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[id]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(s.profiles, id)
	delete(s.history, id)
	return nil
}

// Profile returns one profile by id.
func (s *MemStore) Profile(_ context.Context, id string) (model.HorseProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, exists := s.profiles[id]
	if !exists {
		return model.HorseProfile{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return p, nil
}

// Profiles returns all profiles ordered by id for deterministic iteration.
func (s *MemStore) Profiles(_ context.Context) ([]model.HorseProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.HorseProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AppendRecord appends one training record, keeping history timestamp-ordered.
func (s *MemStore) AppendRecord(_ context.Context, r model.TrainingRecord) error {
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidRow)
	}
	if r.Intensity < model.IntensityLow || r.Intensity > model.IntensityHigh {
		return fmt.Errorf("%w: unknown intensity", ErrInvalidRow)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[r.HorseID]; !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, r.HorseID)
	}
	s.history[r.HorseID] = insertOrdered(s.history[r.HorseID], r)
	return nil
}

// History returns a copy of the horse's ordered records.
func (s *MemStore) History(_ context.Context, horseID string) ([]model.TrainingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, exists := s.profiles[horseID]; !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, horseID)
	}
	records := s.history[horseID]
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]model.TrainingRecord, len(records))
	copy(out, records)
	return out, nil
}

// Count returns the number of profiles tracked.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// insertOrdered places r into records keeping timestamp order. Appends are
// the common case since histories arrive chronologically.
func insertOrdered(records []model.TrainingRecord, r model.TrainingRecord) []model.TrainingRecord {
	i := len(records)
	for i > 0 && records[i-1].Timestamp.After(r.Timestamp) {
		i--
	}
	records = append(records, model.TrainingRecord{})
	copy(records[i+1:], records[i:])
	records[i] = r
	return records
}
