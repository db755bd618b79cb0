// Package repository defines the profile/history store interface and errors.
package repository

import (
	"context"

	"github.com/okian/paddock/internal/domain/model"
)

// Store provides read/write access to horse profiles and their training
// history. Profiles are mutable only through operator corrective edits;
// training records are append-only and kept ordered by timestamp per horse.
type Store interface {
	// CreateProfile adds a new profile. Returns ErrDuplicateID if the id is
	// already taken.
	CreateProfile(ctx context.Context, p model.HorseProfile) error

	// UpdateProfile replaces an existing profile (corrective edit).
	// Returns ErrNotFound for unknown ids.
	UpdateProfile(ctx context.Context, p model.HorseProfile) error

	// DeleteProfile removes a profile and its history.
	// Returns ErrNotFound for unknown ids.
	DeleteProfile(ctx context.Context, id string) error

	// Profile returns one profile by id. Returns ErrNotFound if unknown.
	Profile(ctx context.Context, id string) (model.HorseProfile, error)

	// Profiles returns all profiles ordered by id.
	Profiles(ctx context.Context) ([]model.HorseProfile, error)

	// AppendRecord appends a training record to the horse's history.
	// Returns ErrNotFound if the horse is unknown.
	AppendRecord(ctx context.Context, r model.TrainingRecord) error

	// History returns the horse's training records ordered by timestamp.
	// An empty history for a known horse is valid and returns a nil slice.
	History(ctx context.Context, horseID string) ([]model.TrainingRecord, error)

	// Count returns the number of profiles tracked.
	Count(ctx context.Context) int
}
