package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/paddock/internal/domain/feature"
	"github.com/okian/paddock/internal/domain/model"
	"github.com/okian/paddock/internal/domain/trainer"
	"github.com/okian/paddock/pkg/logger"
)

// outcomeScale converts the 1-10 record rating to the [0,1] range models
// predict on.
const outcomeScale = 10.0

// buildDataset turns the store's profiles and histories into training pairs.
// Each historical record becomes one row: the horse's state as of the record
// timestamp plus the record's own action, paired with its normalized outcome.
// Horses with defective profiles are skipped with a warning; a missing signal
// source is a configuration defect and aborts the build.
func (s *Service) buildDataset(ctx context.Context, composer *feature.Composer) (trainer.Dataset, error) {
	profiles, err := s.store.Profiles(ctx)
	if err != nil {
		return trainer.Dataset{}, fmt.Errorf("load profiles: %w", err)
	}

	var ds trainer.Dataset
	for _, profile := range profiles {
		history, err := s.store.History(ctx, profile.ID)
		if err != nil {
			return trainer.Dataset{}, fmt.Errorf("load history for %q: %w", profile.ID, err)
		}
		for i, record := range history {
			action := model.CandidateAction{
				Exercise:        record.Exercise,
				DurationMinutes: record.DurationMinutes,
				Intensity:       record.Intensity,
			}
			// State as of the record excludes the record itself: history is
			// timestamp-ordered, so pass only the earlier slice.
			v, err := composer.Compose(ctx, profile, history[:i], action, record.Timestamp)
			if err != nil {
				if errors.Is(err, feature.ErrInvalidProfile) {
					s.logger.Warn(ctx, "skipping horse with defective profile",
						logger.String("horse_id", profile.ID),
						logger.Error(err),
					)
					break
				}
				return trainer.Dataset{}, err
			}
			ds.Append(v, normalizeOutcome(record.Outcome))
		}
	}
	return ds, nil
}

func normalizeOutcome(outcome float64) float64 {
	v := outcome / outcomeScale
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
