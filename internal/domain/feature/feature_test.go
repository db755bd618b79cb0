package feature_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/paddock/internal/domain/feature"
	"github.com/okian/paddock/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// stubSource is a fixed-value signal source for testing.
type stubSource struct {
	value float64
	found bool
	err   error
}

func (s *stubSource) Latest(_ context.Context, _ string, _ time.Time) (float64, bool, error) {
	return s.value, s.found, s.err
}

func testProfile() model.HorseProfile {
	return model.HorseProfile{
		ID:        "starlight",
		Name:      "Starlight",
		Breed:     "andalusian",
		BirthDate: time.Date(2018, 4, 12, 0, 0, 0, 0, time.UTC),
	}
}

func testAction() model.CandidateAction {
	return model.CandidateAction{
		Exercise:        model.ExerciseDressage,
		DurationMinutes: 40,
		Intensity:       model.IntensityMedium,
	}
}

func testHistory() []model.TrainingRecord {
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return []model.TrainingRecord{
		{HorseID: "starlight", Timestamp: base, Exercise: model.ExerciseDressage, DurationMinutes: 40, Intensity: model.IntensityMedium, Outcome: 7},
		{HorseID: "starlight", Timestamp: base.AddDate(0, 0, 1), Exercise: model.ExerciseJumping, DurationMinutes: 25, Intensity: model.IntensityHigh, Outcome: 8},
		{HorseID: "starlight", Timestamp: base.AddDate(0, 0, 2), Exercise: model.ExerciseTrail, DurationMinutes: 60, Intensity: model.IntensityLow, Outcome: 6},
	}
}

func TestComposer_Shape(t *testing.T) {
	Convey("Given composers with different toggle sets", t, func() {
		ctx := context.Background()
		asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		Convey("When all signals are disabled", func() {
			c := feature.NewComposer(feature.Toggles{})

			Convey("Then the shape counts base and action features only", func() {
				v, err := c.Compose(ctx, testProfile(), nil, testAction(), asOf)
				So(err, ShouldBeNil)
				So(v.Shape(), ShouldEqual, c.Shape())
				So(len(c.FeatureNames()), ShouldEqual, c.Shape())
			})
		})

		Convey("When toggles are enabled one at a time", func() {
			none := feature.NewComposer(feature.Toggles{}).Shape()

			Convey("Then each enabled toggle adds exactly one feature", func() {
				one := feature.NewComposer(feature.Toggles{Weather: true},
					feature.WithSignalSource(model.SignalWeather, &stubSource{}),
				)
				all := feature.NewComposer(feature.Toggles{Weather: true, Diet: true, Medical: true, Lineage: true},
					feature.WithSignalSource(model.SignalWeather, &stubSource{}),
					feature.WithSignalSource(model.SignalDiet, &stubSource{}),
					feature.WithSignalSource(model.SignalMedical, &stubSource{}),
					feature.WithSignalSource(model.SignalLineage, &stubSource{}),
				)
				So(one.Shape(), ShouldEqual, none+1)
				So(all.Shape(), ShouldEqual, none+4)
			})
		})
	})
}

func TestComposer_Compose(t *testing.T) {
	Convey("Given a composer with no signals enabled", t, func() {
		ctx := context.Background()
		c := feature.NewComposer(feature.Toggles{})
		asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		Convey("When composing the same inputs twice", func() {
			v1, err1 := c.Compose(ctx, testProfile(), testHistory(), testAction(), asOf)
			v2, err2 := c.Compose(ctx, testProfile(), testHistory(), testAction(), asOf)

			Convey("Then both calls succeed with bit-identical vectors", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(v2.Values, ShouldResemble, v1.Values)
			})
		})

		Convey("When the horse has no history", func() {
			v, err := c.Compose(ctx, testProfile(), nil, testAction(), asOf)

			Convey("Then composition succeeds with zero-valued aggregates", func() {
				So(err, ShouldBeNil)
				So(v.Shape(), ShouldEqual, c.Shape())
				// history_count is the second base feature
				So(v.Values[1], ShouldEqual, 0)
			})
		})

		Convey("When history contains records after the reference time", func() {
			history := testHistory()
			cutoff := history[0].Timestamp.Add(time.Hour)
			v, err := c.Compose(ctx, testProfile(), history, testAction(), cutoff)

			Convey("Then only records at or before asOf are counted", func() {
				So(err, ShouldBeNil)
				So(v.Values[1], ShouldEqual, 1)
			})
		})

		Convey("When the profile has an empty id", func() {
			p := testProfile()
			p.ID = "  "
			_, err := c.Compose(ctx, p, nil, testAction(), asOf)

			Convey("Then it fails with ErrInvalidProfile", func() {
				So(errors.Is(err, feature.ErrInvalidProfile), ShouldBeTrue)
			})
		})

		Convey("When the profile has no birth date", func() {
			p := testProfile()
			p.BirthDate = time.Time{}
			_, err := c.Compose(ctx, p, nil, testAction(), asOf)

			Convey("Then it fails with ErrInvalidProfile", func() {
				So(errors.Is(err, feature.ErrInvalidProfile), ShouldBeTrue)
			})
		})

		Convey("When the horse is born after the reference time", func() {
			p := testProfile()
			p.BirthDate = asOf.AddDate(1, 0, 0)
			_, err := c.Compose(ctx, p, nil, testAction(), asOf)

			Convey("Then it fails with ErrInvalidProfile", func() {
				So(errors.Is(err, feature.ErrInvalidProfile), ShouldBeTrue)
			})
		})
	})

	Convey("Given a composer with the weather signal enabled", t, func() {
		ctx := context.Background()
		asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		Convey("When the source has a reading for the horse", func() {
			c := feature.NewComposer(feature.Toggles{Weather: true},
				feature.WithSignalSource(model.SignalWeather, &stubSource{value: 0.8, found: true}),
			)
			v, err := c.Compose(ctx, testProfile(), nil, testAction(), asOf)

			Convey("Then the reading lands in the last vector position", func() {
				So(err, ShouldBeNil)
				So(v.Values[len(v.Values)-1], ShouldEqual, 0.8)
			})
		})

		Convey("When the source has no reading for the horse", func() {
			c := feature.NewComposer(feature.Toggles{Weather: true},
				feature.WithSignalSource(model.SignalWeather, &stubSource{found: false}),
			)
			v, err := c.Compose(ctx, testProfile(), nil, testAction(), asOf)

			Convey("Then the signal degrades to a neutral zero", func() {
				So(err, ShouldBeNil)
				So(v.Values[len(v.Values)-1], ShouldEqual, 0)
			})
		})

		Convey("When no source is registered for the enabled category", func() {
			c := feature.NewComposer(feature.Toggles{Weather: true})
			_, err := c.Compose(ctx, testProfile(), nil, testAction(), asOf)

			Convey("Then it fails with ErrMissingRequiredSignal", func() {
				So(errors.Is(err, feature.ErrMissingRequiredSignal), ShouldBeTrue)
			})
		})

		Convey("When the source is unreachable", func() {
			c := feature.NewComposer(feature.Toggles{Weather: true},
				feature.WithSignalSource(model.SignalWeather, &stubSource{err: errors.New("timeout")}),
			)
			_, err := c.Compose(ctx, testProfile(), nil, testAction(), asOf)

			Convey("Then it fails with ErrMissingRequiredSignal", func() {
				So(errors.Is(err, feature.ErrMissingRequiredSignal), ShouldBeTrue)
			})
		})
	})
}

func TestComposer_ActionFeatures(t *testing.T) {
	Convey("Given one composer and two different candidate actions", t, func() {
		ctx := context.Background()
		c := feature.NewComposer(feature.Toggles{})
		asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		Convey("When composing with each action", func() {
			a1 := testAction()
			a2 := model.CandidateAction{Exercise: model.ExerciseTrail, DurationMinutes: 60, Intensity: model.IntensityHigh}
			v1, err1 := c.Compose(ctx, testProfile(), testHistory(), a1, asOf)
			v2, err2 := c.Compose(ctx, testProfile(), testHistory(), a2, asOf)

			Convey("Then the vectors share a shape but differ in action features", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(v1.Shape(), ShouldEqual, v2.Shape())
				So(v1.Values, ShouldNotResemble, v2.Values)
			})
		})
	})
}
