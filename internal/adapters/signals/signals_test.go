package signals_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/paddock/internal/adapters/signals"
	"github.com/okian/paddock/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func reading(horseID string, cat model.SignalCategory, ts time.Time, value float64) model.ContextSignal {
	return model.ContextSignal{HorseID: horseID, Category: cat, Timestamp: ts, Value: value}
}

func TestMemorySource_Latest(t *testing.T) {
	Convey("Given a weather source with readings for one horse", t, func() {
		ctx := context.Background()
		src := signals.NewMemorySource(model.SignalWeather)
		base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
		src.Record(reading("bella", model.SignalWeather, base, 0.2))
		src.Record(reading("bella", model.SignalWeather, base.Add(2*time.Hour), 0.9))

		Convey("When querying at a time between the readings", func() {
			v, ok, err := src.Latest(ctx, "bella", base.Add(time.Hour))

			Convey("Then the earlier reading wins", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0.2)
			})
		})

		Convey("When querying after both readings", func() {
			v, ok, err := src.Latest(ctx, "bella", base.Add(3*time.Hour))

			Convey("Then the most recent reading wins", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0.9)
			})
		})

		Convey("When querying before any reading", func() {
			_, ok, err := src.Latest(ctx, "bella", base.Add(-time.Hour))

			Convey("Then there is no reading", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When querying a horse without readings", func() {
			_, ok, err := src.Latest(ctx, "ghost", base)

			Convey("Then there is no reading", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When recording a reading of another category", func() {
			src.Record(reading("bella", model.SignalDiet, base.Add(4*time.Hour), 0.1))
			v, ok, err := src.Latest(ctx, "bella", base.Add(5*time.Hour))

			Convey("Then the foreign reading is ignored", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0.9)
			})
		})

		Convey("When readings arrive out of timestamp order", func() {
			src.Record(reading("bella", model.SignalWeather, base.Add(time.Hour), 0.5))
			v, ok, err := src.Latest(ctx, "bella", base.Add(90*time.Minute))

			Convey("Then ordering still holds for queries", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0.5)
			})
		})
	})
}

func TestSet_Record(t *testing.T) {
	Convey("Given a full source set", t, func() {
		ctx := context.Background()
		set := signals.NewSet()
		base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

		Convey("When recording readings of every category", func() {
			set.Record(reading("bella", model.SignalWeather, base, 0.1))
			set.Record(reading("bella", model.SignalDiet, base, 0.2))
			set.Record(reading("bella", model.SignalMedical, base, 0.3))
			set.Record(reading("bella", model.SignalLineage, base, 0.4))

			Convey("Then each reading lands in its category's source", func() {
				for cat, want := range map[model.SignalCategory]float64{
					model.SignalWeather: 0.1,
					model.SignalDiet:    0.2,
					model.SignalMedical: 0.3,
					model.SignalLineage: 0.4,
				} {
					v, ok, err := set[cat].Latest(ctx, "bella", base)
					So(err, ShouldBeNil)
					So(ok, ShouldBeTrue)
					So(v, ShouldEqual, want)
				}
			})
		})

		Convey("When recording a reading with an unknown category", func() {
			set.Record(reading("bella", model.SignalCategory("astrology"), base, 0.9))

			Convey("Then it is dropped without panic", func() {
				_, ok, err := set[model.SignalWeather].Latest(ctx, "bella", base)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})
	})
}
