// Package feature composes fixed-shape feature vectors from horse profiles,
// training history, and optional context signals.
package feature

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/paddock/internal/domain/model"
)

// Scale constants for normalizing raw inputs into model-friendly ranges.
const (
	outcomeScale   = 10.0 // training records score outcomes on a 1-10 scale
	intensityScale = float64(model.IntensityHigh)
	durationScale  = 120.0 // minutes; sessions beyond this clamp to 1
)

// Toggles selects which optional signal categories are included in composed
// vectors. The vector shape is a pure function of this set.
type Toggles struct {
	Weather bool
	Diet    bool
	Medical bool
	Lineage bool
}

// enabled returns the toggled-on categories in stable order. Ordering here
// fixes the position of signal features in the vector.
func (t Toggles) enabled() []model.SignalCategory {
	out := make([]model.SignalCategory, 0, 4)
	if t.Weather {
		out = append(out, model.SignalWeather)
	}
	if t.Diet {
		out = append(out, model.SignalDiet)
	}
	if t.Medical {
		out = append(out, model.SignalMedical)
	}
	if t.Lineage {
		out = append(out, model.SignalLineage)
	}
	return out
}

// Vector is a fixed-order numeric feature tuple. Never persisted; recomputed
// on demand.
type Vector struct {
	Values []float64
}

// Shape returns the number of features in the vector.
func (v Vector) Shape() int { return len(v.Values) }

// SignalSource yields the latest context signal value for a horse.
type SignalSource interface {
	// Latest returns the most recent value at or before asOf for the horse.
	// ok is false when the source is reachable but holds no data for the
	// horse; that degrades to a neutral default, not an error.
	Latest(ctx context.Context, horseID string, asOf time.Time) (value float64, ok bool, err error)
}

// Option applies a configuration option to the Composer.
type Option func(*Composer)

// WithSignalSource registers the source backing one signal category.
func WithSignalSource(cat model.SignalCategory, src SignalSource) Option {
	return func(c *Composer) {
		if src != nil {
			c.sources[cat] = src
		}
	}
}

// Composer turns (profile, history, action, reference time) into a Vector.
// It is pure over its inputs: no ambient clock, no mutation.
type Composer struct {
	toggles Toggles
	sources map[model.SignalCategory]SignalSource
}

// NewComposer creates a composer for the given toggle set.
func NewComposer(toggles Toggles, opts ...Option) *Composer {
	c := &Composer{
		toggles: toggles,
		sources: make(map[model.SignalCategory]SignalSource),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Toggles returns the toggle set the composer was built with.
func (c *Composer) Toggles() Toggles { return c.toggles }

// Shape returns the vector shape this composer produces. All vectors from
// one composer share this shape, so every vector fed to one model instance
// is identically shaped.
func (c *Composer) Shape() int {
	return len(baseNames) + len(actionNames) + len(c.toggles.enabled())
}

// FeatureNames returns the ordered feature names matching Vector positions.
func (c *Composer) FeatureNames() []string {
	names := make([]string, 0, c.Shape())
	names = append(names, baseNames...)
	names = append(names, actionNames...)
	for _, cat := range c.toggles.enabled() {
		names = append(names, "signal_"+string(cat))
	}
	return names
}

var baseNames = buildBaseNames()

func buildBaseNames() []string {
	names := []string{
		"age_years",
		"history_count",
		"avg_duration",
		"avg_intensity",
		"avg_outcome",
		"exercise_variety",
	}
	for _, ex := range model.Exercises() {
		names = append(names, "avg_outcome_"+string(ex))
	}
	return names
}

var actionNames = buildActionNames()

func buildActionNames() []string {
	names := make([]string, 0, len(model.Exercises())+2)
	for _, ex := range model.Exercises() {
		names = append(names, "action_is_"+string(ex))
	}
	return append(names, "action_duration", "action_intensity")
}

// Compose produces the feature vector for "horse state + proposed action" as
// of the given reference time. History must be ordered by timestamp; an empty
// history still composes, with zero-valued aggregates.
func (c *Composer) Compose(
	ctx context.Context,
	profile model.HorseProfile,
	history []model.TrainingRecord,
	action model.CandidateAction,
	asOf time.Time,
) (Vector, error) {
	if err := validateProfile(profile, asOf); err != nil {
		return Vector{}, err
	}

	values := make([]float64, 0, c.Shape())
	values = append(values, historyFeatures(profile, history, asOf)...)
	values = append(values, actionFeatures(action)...)

	for _, cat := range c.toggles.enabled() {
		src, ok := c.sources[cat]
		if !ok {
			// Enabling a signal is explicit caller intent; an absent source
			// is surfaced rather than silently defaulted.
			return Vector{}, fmt.Errorf("%w: no source for %q", ErrMissingRequiredSignal, cat)
		}
		v, found, err := src.Latest(ctx, profile.ID, asOf)
		if err != nil {
			return Vector{}, fmt.Errorf("%w: source for %q unreachable: %v", ErrMissingRequiredSignal, cat, err)
		}
		if !found {
			v = 0 // neutral default when the horse has no reading
		}
		values = append(values, v)
	}

	return Vector{Values: values}, nil
}

func validateProfile(p model.HorseProfile, asOf time.Time) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProfile)
	}
	if p.BirthDate.IsZero() {
		return fmt.Errorf("%w: horse %q has no birth date", ErrInvalidProfile, p.ID)
	}
	if p.AgeYears(asOf) < 0 {
		return fmt.Errorf("%w: horse %q has negative age at reference time", ErrInvalidProfile, p.ID)
	}
	return nil
}

// historyFeatures aggregates the horse's past sessions. Only records at or
// before asOf count, keeping composition pure for replayed timestamps.
func historyFeatures(p model.HorseProfile, history []model.TrainingRecord, asOf time.Time) []float64 {
	var (
		count        float64
		sumDuration  float64
		sumIntensity float64
		sumOutcome   float64
		seen         = map[model.Exercise]bool{}
		perExSum     = map[model.Exercise]float64{}
		perExCount   = map[model.Exercise]float64{}
	)
	for _, r := range history {
		if r.Timestamp.After(asOf) {
			continue
		}
		count++
		sumDuration += float64(r.DurationMinutes)
		sumIntensity += float64(r.Intensity)
		sumOutcome += r.Outcome
		seen[r.Exercise] = true
		perExSum[r.Exercise] += r.Outcome
		perExCount[r.Exercise]++
	}

	values := make([]float64, 0, len(baseNames))
	values = append(values, float64(p.AgeYears(asOf)))
	values = append(values, count)
	if count > 0 {
		values = append(values,
			clamp01(sumDuration/count/durationScale),
			sumIntensity/count/intensityScale,
			clamp01(sumOutcome/count/outcomeScale),
		)
	} else {
		values = append(values, 0, 0, 0)
	}
	values = append(values, float64(len(seen)))
	for _, ex := range model.Exercises() {
		if n := perExCount[ex]; n > 0 {
			values = append(values, clamp01(perExSum[ex]/n/outcomeScale))
		} else {
			values = append(values, 0)
		}
	}
	return values
}

func actionFeatures(a model.CandidateAction) []float64 {
	values := make([]float64, 0, len(actionNames))
	for _, ex := range model.Exercises() {
		if a.Exercise == ex {
			values = append(values, 1)
		} else {
			values = append(values, 0)
		}
	}
	values = append(values,
		clamp01(float64(a.DurationMinutes)/durationScale),
		float64(a.Intensity)/intensityScale,
	)
	return values
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
