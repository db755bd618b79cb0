// Package model contains domain models passed between layers.
package model

import "time"

// Exercise enumerates the training activities the engine knows about.
type Exercise string

// Known exercise types. The candidate action space supplied by callers is
// expected to use these, but the engine treats unknown values as their own
// category rather than rejecting them.
const (
	ExerciseDressage     Exercise = "dressage"
	ExerciseReining      Exercise = "reining"
	ExerciseJumping      Exercise = "jumping"
	ExerciseConditioning Exercise = "conditioning"
	ExerciseGroundwork   Exercise = "groundwork"
	ExerciseTrail        Exercise = "trail"
)

// Exercises lists the known exercise types in stable order.
func Exercises() []Exercise {
	return []Exercise{
		ExerciseDressage,
		ExerciseReining,
		ExerciseJumping,
		ExerciseConditioning,
		ExerciseGroundwork,
		ExerciseTrail,
	}
}

// Intensity is the ordinal effort scale for a training session.
type Intensity int

const (
	IntensityLow Intensity = iota + 1
	IntensityMedium
	IntensityHigh
)

// String returns the lowercase name used on the wire.
func (i Intensity) String() string {
	switch i {
	case IntensityLow:
		return "low"
	case IntensityMedium:
		return "medium"
	case IntensityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseIntensity maps a wire name back to an Intensity. Unknown names map to
// zero, which fails validation downstream.
func ParseIntensity(s string) Intensity {
	switch s {
	case "low":
		return IntensityLow
	case "medium":
		return IntensityMedium
	case "high":
		return IntensityHigh
	default:
		return 0
	}
}

// HorseProfile describes one horse. Profiles are immutable once created
// except for corrective edits by an operator.
type HorseProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Breed     string    `json:"breed"`
	BirthDate time.Time `json:"birth_date"`
	// LineageRef optionally points at a lineage record (sire/dam registry id).
	LineageRef string `json:"lineage_ref,omitempty"`
}

// AgeYears computes the horse's age in whole years as of the given reference
// time. The reference is always passed explicitly so derivations stay pure.
func (p HorseProfile) AgeYears(asOf time.Time) int {
	years := asOf.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(asOf) {
		years--
	}
	return years
}

// TrainingRecord is one historical training session outcome for a horse.
// Records are append-only and ordered by timestamp per horse.
type TrainingRecord struct {
	HorseID   string    `json:"horse_id"`
	Timestamp time.Time `json:"ts"`
	Exercise  Exercise  `json:"exercise"`
	// DurationMinutes must be positive.
	DurationMinutes int       `json:"duration_minutes"`
	Intensity       Intensity `json:"intensity"`
	// Outcome is the performance score on the 1-10 rating scale.
	Outcome float64 `json:"outcome"`
}

// SignalCategory names one optional context signal channel.
type SignalCategory string

const (
	SignalWeather SignalCategory = "weather"
	SignalDiet    SignalCategory = "diet"
	SignalMedical SignalCategory = "medical"
	SignalLineage SignalCategory = "lineage"
)

// ContextSignal is one optional side-channel observation for a horse.
type ContextSignal struct {
	HorseID   string         `json:"horse_id"`
	Category  SignalCategory `json:"category"`
	Timestamp time.Time      `json:"ts"`
	// Value is the signal's numeric reading, meaning depends on the category
	// (e.g. temperature for weather, restriction count for diet).
	Value float64 `json:"value"`
}

// CandidateAction is one (exercise, duration, intensity) tuple the ranker
// considers. The action space is supplied externally, never invented here.
type CandidateAction struct {
	Exercise        Exercise  `json:"exercise"`
	DurationMinutes int       `json:"duration_minutes"`
	Intensity       Intensity `json:"intensity"`
}

// Recommendation is one ranked training suggestion for a horse. Ephemeral,
// regenerated per request.
type Recommendation struct {
	HorseID         string    `json:"horse_id"`
	Exercise        Exercise  `json:"exercise"`
	DurationMinutes int       `json:"duration_minutes"`
	Intensity       Intensity `json:"intensity"`
	// Confidence is the model-produced suitability score in [0,1].
	Confidence float64 `json:"confidence"`
}
