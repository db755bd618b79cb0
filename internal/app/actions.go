package service

import "github.com/okian/paddock/internal/domain/model"

// Base session durations per exercise, in minutes. These seed the default
// candidate action space when the caller supplies none.
var baseDurations = map[model.Exercise]int{
	model.ExerciseDressage:     40,
	model.ExerciseReining:      30,
	model.ExerciseJumping:      25,
	model.ExerciseConditioning: 45,
	model.ExerciseGroundwork:   35,
	model.ExerciseTrail:        45,
}

// DefaultActionSpace enumerates every known exercise at its base duration
// across all three intensities, in stable order. The ranker never invents
// actions; this is the engine's stand-in when the serving layer does not
// supply its own space.
func DefaultActionSpace() []model.CandidateAction {
	intensities := []model.Intensity{model.IntensityLow, model.IntensityMedium, model.IntensityHigh}
	actions := make([]model.CandidateAction, 0, len(baseDurations)*len(intensities))
	for _, ex := range model.Exercises() {
		for _, in := range intensities {
			actions = append(actions, model.CandidateAction{
				Exercise:        ex,
				DurationMinutes: baseDurations[ex],
				Intensity:       in,
			})
		}
	}
	return actions
}
