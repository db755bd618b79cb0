// Package signals provides in-memory context-signal sources (weather, diet,
// medical, lineage) backing the feature composer's optional inputs.
package signals

import (
	"context"
	"sync"
	"time"

	"github.com/okian/paddock/internal/domain/model"
)

// MemorySource implements feature.SignalSource for one signal category.
// Readings are kept per horse, ordered by timestamp.
type MemorySource struct {
	mu       sync.RWMutex
	category model.SignalCategory
	readings map[string][]model.ContextSignal
}

// NewMemorySource creates an empty source for the category.
func NewMemorySource(category model.SignalCategory) *MemorySource {
	return &MemorySource{
		category: category,
		readings: make(map[string][]model.ContextSignal),
	}
}

// Category returns the signal category this source serves.
func (s *MemorySource) Category() model.SignalCategory { return s.category }

// Record stores one reading. Readings for other categories are ignored so a
// mixed snapshot can be fanned out to every source.
func (s *MemorySource) Record(sig model.ContextSignal) {
	if sig.Category != s.category {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.readings[sig.HorseID]
	i := len(list)
	for i > 0 && list[i-1].Timestamp.After(sig.Timestamp) {
		i--
	}
	list = append(list, model.ContextSignal{})
	copy(list[i+1:], list[i:])
	list[i] = sig
	s.readings[sig.HorseID] = list
}

// Latest returns the most recent reading at or before asOf for the horse.
// ok is false when the horse has no reading; the composer degrades that to a
// neutral default.
func (s *MemorySource) Latest(_ context.Context, horseID string, asOf time.Time) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.readings[horseID]
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].Timestamp.After(asOf) {
			return list[i].Value, true, nil
		}
	}
	return 0, false, nil
}

// Set bundles one source per known category.
type Set map[model.SignalCategory]*MemorySource

// NewSet creates sources for all four signal categories.
func NewSet() Set {
	return Set{
		model.SignalWeather: NewMemorySource(model.SignalWeather),
		model.SignalDiet:    NewMemorySource(model.SignalDiet),
		model.SignalMedical: NewMemorySource(model.SignalMedical),
		model.SignalLineage: NewMemorySource(model.SignalLineage),
	}
}

// Record routes one reading to the matching source.
func (s Set) Record(sig model.ContextSignal) {
	if src, ok := s[sig.Category]; ok {
		src.Record(sig)
	}
}
