package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/okian/paddock/internal/domain/model"
)

const snapshotFileMode = 0o644

// Snapshot is the JSON document shape used to seed and persist the store.
type Snapshot struct {
	Profiles []model.HorseProfile   `json:"profiles"`
	Records  []model.TrainingRecord `json:"records"`
	Signals  []model.ContextSignal  `json:"signals,omitempty"`
}

// LoadSnapshot reads a snapshot document from disk.
func LoadSnapshot(path string) (Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return snap, nil
}

// SaveSnapshot writes the store's current contents to disk.
func SaveSnapshot(path string, snap Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, raw, snapshotFileMode); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Dump captures the store contents as a Snapshot.
func (s *MemStore) Dump() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{}
	for _, p := range s.profiles {
		snap.Profiles = append(snap.Profiles, p)
	}
	for _, records := range s.history {
		snap.Records = append(snap.Records, records...)
	}
	return snap
}
