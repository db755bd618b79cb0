// Package ranker scores candidate training actions with a trained model and
// produces ranked, confidence-filtered recommendations.
package ranker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/paddock/internal/domain/feature"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/trainer"
)

// Limits bounds the recommendation output for one horse.
type Limits struct {
	// MaxPerHorse truncates the ranked list. Must be positive.
	MaxPerHorse int
	// MinConfidence is the inclusive lower bound: candidates scored exactly
	// at the threshold are kept, strictly below are dropped.
	MinConfidence float64
}

// Rank scores every candidate action for the horse and returns the surviving
// recommendations ordered by confidence descending. Exact confidence ties
// keep the candidates' stable input order so output is reproducible. A result
// with zero survivors is success, not an error.
func Rank(
	ctx context.Context,
	m trainer.Model,
	composer *feature.Composer,
	profile model.HorseProfile,
	history []model.TrainingRecord,
	candidates []model.CandidateAction,
	asOf time.Time,
	limits Limits,
) ([]model.Recommendation, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: horse %q", ErrEmptyActionSpace, profile.ID)
	}
	if composer.Shape() != m.Shape() {
		return nil, fmt.Errorf("%w: composer produces shape %d, model trained on %d",
			ErrModelShapeMismatch, composer.Shape(), m.Shape())
	}

	scored := make([]model.Recommendation, 0, len(candidates))
	for _, action := range candidates {
		v, err := composer.Compose(ctx, profile, history, action, asOf)
		if err != nil {
			return nil, err
		}
		confidence, err := m.Score(v)
		if err != nil {
			// Shape was checked up front; a mismatch here means the model and
			// composer disagree about the feature layout, which is fatal
			// misconfiguration either way.
			return nil, fmt.Errorf("%w: %v", ErrModelShapeMismatch, err)
		}
		if confidence < limits.MinConfidence {
			continue
		}
		scored = append(scored, model.Recommendation{
			HorseID:         profile.ID,
			Exercise:        action.Exercise,
			DurationMinutes: action.DurationMinutes,
			Intensity:       action.Intensity,
			Confidence:      confidence,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})
	if limits.MaxPerHorse > 0 && len(scored) > limits.MaxPerHorse {
		scored = scored[:limits.MaxPerHorse]
	}
	return scored, nil
}
