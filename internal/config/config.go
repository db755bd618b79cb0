// Package config defines engine configuration structures and loading hooks.
//
// Configuration is read once at process start and treated as immutable for
// the lifetime of any model trained under it.
package config

import (
	"context"
	"fmt"

	"github.com/okian/paddock/internal/domain/trainer"
)

// Config contains process configuration. Loaded once; never mutated.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	Model           Model           `koanf:"model"`
	Training        Training        `koanf:"training"`
	Features        Features        `koanf:"features"`
	Recommendations Recommendations `koanf:"recommendations"`
}

// Model selects the estimator family and its hyperparameters.
type Model struct {
	// Type is the estimator registry key, e.g. "random_forest" or "knn".
	Type string `koanf:"type"`
	// Params holds flat numeric hyperparameters (n_estimators, max_depth,
	// min_leaf, k). Unknown keys are ignored by estimators.
	Params map[string]float64 `koanf:"params"`
}

// Training selects the validation strategy for training runs.
type Training struct {
	// ValidationMethod is "holdout" or "cross_validation"; exactly one
	// strategy applies to a run, never both.
	ValidationMethod string `koanf:"validation_method"`
	// TestSize is the held-out fraction in (0,1) for holdout validation.
	TestSize float64 `koanf:"test_size"`
	// NSplits is the fold count for cross-validation.
	NSplits int `koanf:"n_splits"`
	// Seed fixes the random source for reproducible training.
	Seed int64 `koanf:"seed"`
}

// Features toggles inclusion of optional context signals in feature vectors.
type Features struct {
	IncludeWeather bool `koanf:"include_weather"`
	IncludeDiet    bool `koanf:"include_diet"`
	IncludeMedical bool `koanf:"include_medical"`
	IncludeLineage bool `koanf:"include_lineage"`
}

// Recommendations bounds ranked output per horse.
type Recommendations struct {
	MaxPerHorse   int     `koanf:"max_per_horse"`
	MinConfidence float64 `koanf:"min_confidence"`
}

// New creates a Config with compiled-in defaults. Context is accepted first
// to satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":9080",
		Model: Model{
			Type: "random_forest",
			Params: map[string]float64{
				"n_estimators": 100,
				"max_depth":    10,
			},
		},
		Training: Training{
			ValidationMethod: trainer.ValidationCrossVal,
			TestSize:         0.2,
			NSplits:          5,
			Seed:             42,
		},
		Features: Features{
			IncludeWeather: true,
			IncludeDiet:    true,
			IncludeMedical: true,
			IncludeLineage: true,
		},
		Recommendations: Recommendations{
			MaxPerHorse:   5,
			MinConfidence: 0.7,
		},
	}
}

// Validate rejects configurations the engine cannot run under. A failure here
// is fatal to the process: the engine must not accept training or
// recommendation calls with a defective document.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !trainer.KnownModelTypes(c.Model.Type):
		return fmt.Errorf("%w: unknown model.type %q", ErrInvalidConfig, c.Model.Type)
	case c.Training.ValidationMethod != trainer.ValidationHoldout &&
		c.Training.ValidationMethod != trainer.ValidationCrossVal:
		return fmt.Errorf("%w: training.validation_method must be %q or %q, got %q",
			ErrInvalidConfig, trainer.ValidationHoldout, trainer.ValidationCrossVal, c.Training.ValidationMethod)
	case c.Training.ValidationMethod == trainer.ValidationHoldout &&
		(c.Training.TestSize <= 0 || c.Training.TestSize >= 1):
		return fmt.Errorf("%w: training.test_size must be in (0,1), got %v", ErrInvalidConfig, c.Training.TestSize)
	case c.Training.ValidationMethod == trainer.ValidationCrossVal && c.Training.NSplits < 2:
		return fmt.Errorf("%w: training.n_splits must be at least 2, got %d", ErrInvalidConfig, c.Training.NSplits)
	case c.Recommendations.MaxPerHorse < 1:
		return fmt.Errorf("%w: recommendations.max_per_horse must be positive, got %d",
			ErrInvalidConfig, c.Recommendations.MaxPerHorse)
	case c.Recommendations.MinConfidence < 0 || c.Recommendations.MinConfidence > 1:
		return fmt.Errorf("%w: recommendations.min_confidence must be in [0,1], got %v",
			ErrInvalidConfig, c.Recommendations.MinConfidence)
	}
	return nil
}
