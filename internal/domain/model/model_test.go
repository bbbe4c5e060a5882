package model_test

import (
	"testing"

	"github.com/okian/ninebox/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRating(t *testing.T) {
	Convey("Given the rating enumeration", t, func() {
		Convey("When computing grid indexes", func() {
			So(model.RatingLow.Index(), ShouldEqual, 1)
			So(model.RatingMedium.Index(), ShouldEqual, 2)
			So(model.RatingHigh.Index(), ShouldEqual, 3)
		})

		Convey("When checking validity", func() {
			So(model.RatingLow.IsValid(), ShouldBeTrue)
			So(model.RatingMedium.IsValid(), ShouldBeTrue)
			So(model.RatingHigh.IsValid(), ShouldBeTrue)
			So(model.Rating("").IsValid(), ShouldBeFalse)
			So(model.Rating("extreme").IsValid(), ShouldBeFalse)
		})
	})
}

func TestPosition(t *testing.T) {
	Convey("Given the grid position derivation", t, func() {
		Convey("Then the corners and center map correctly", func() {
			So(model.Position(model.RatingLow, model.RatingLow), ShouldEqual, 1)
			So(model.Position(model.RatingHigh, model.RatingLow), ShouldEqual, 3)
			So(model.Position(model.RatingMedium, model.RatingMedium), ShouldEqual, 5)
			So(model.Position(model.RatingLow, model.RatingHigh), ShouldEqual, 7)
			So(model.Position(model.RatingHigh, model.RatingHigh), ShouldEqual, 9)
		})

		Convey("Then the center cell matches the donut rest state", func() {
			So(model.Position(model.RatingMedium, model.RatingMedium), ShouldEqual, model.CenterPosition)
		})

		Convey("Then all nine cells are distinct", func() {
			ratings := []model.Rating{model.RatingLow, model.RatingMedium, model.RatingHigh}
			seen := make(map[int]bool)
			for _, perf := range ratings {
				for _, pot := range ratings {
					pos := model.Position(perf, pot)
					So(pos, ShouldBeBetweenOrEqual, 1, 9)
					So(seen[pos], ShouldBeFalse)
					seen[pos] = true
				}
			}
		})
	})
}

func TestSetPlacement(t *testing.T) {
	Convey("Given an employee", t, func() {
		e := model.Employee{ID: 1, Name: "Grace Hopper"}

		Convey("When setting a placement", func() {
			e.SetPlacement(model.RatingHigh, model.RatingMedium)

			Convey("Then position is derived together with the ratings", func() {
				So(e.Performance, ShouldEqual, model.RatingHigh)
				So(e.Potential, ShouldEqual, model.RatingMedium)
				So(e.Position, ShouldEqual, 6)
			})
		})

		Convey("When setting a donut placement", func() {
			e.SetDonutPlacement(model.RatingLow, model.RatingHigh)

			Convey("Then only the shadow is touched", func() {
				So(e.Donut.Performance, ShouldEqual, model.RatingLow)
				So(e.Donut.Potential, ShouldEqual, model.RatingHigh)
				So(e.Donut.Position, ShouldEqual, 7)
				So(e.Performance, ShouldEqual, model.Rating(""))
				So(e.Position, ShouldEqual, 0)
			})
		})
	})
}

func TestClone(t *testing.T) {
	Convey("Given an employee with flags", t, func() {
		e := model.Employee{
			ID:    7,
			Name:  "Barbara Liskov",
			Flags: []model.Flag{model.FlagPromotionReady},
		}
		e.SetPlacement(model.RatingHigh, model.RatingHigh)

		Convey("When cloning", func() {
			clone := e.Clone()
			clone.Flags[0] = model.FlagFlightRisk

			Convey("Then the flag slice does not alias the original", func() {
				So(e.Flags[0], ShouldEqual, model.FlagPromotionReady)
				So(clone.ID, ShouldEqual, e.ID)
			})
		})

		Convey("When cloning a sequence", func() {
			seq := model.CloneAll([]model.Employee{e})
			seq[0].Flags[0] = model.FlagNeedsCoaching

			Convey("Then the copies are independent", func() {
				So(e.Flags[0], ShouldEqual, model.FlagPromotionReady)
				So(len(seq), ShouldEqual, 1)
			})
		})
	})
}

func TestFlags(t *testing.T) {
	Convey("Given the closed flag vocabulary", t, func() {
		Convey("Then known flags validate and unknown ones do not", func() {
			for _, f := range model.KnownFlags() {
				So(f.IsValid(), ShouldBeTrue)
			}
			So(model.Flag("rockstar").IsValid(), ShouldBeFalse)
			So(model.Flag("").IsValid(), ShouldBeFalse)
		})
	})

	Convey("Given flag set helpers", t, func() {
		Convey("When normalizing a set with duplicates", func() {
			out := model.NormalizeFlags([]model.Flag{
				model.FlagNewToRole,
				model.FlagFlightRisk,
				model.FlagNewToRole,
			})

			Convey("Then duplicates are removed and order is stable", func() {
				So(out, ShouldResemble, []model.Flag{model.FlagFlightRisk, model.FlagNewToRole})
			})
		})

		Convey("When normalizing an empty set", func() {
			So(model.NormalizeFlags(nil), ShouldBeNil)
		})

		Convey("When diffing two sets", func() {
			current := []model.Flag{model.FlagPromotionReady, model.FlagNewToRole}
			requested := []model.Flag{model.FlagNewToRole, model.FlagFlightRisk}

			toAdd, toRemove := model.DiffFlags(current, requested)

			Convey("Then membership changes are identified", func() {
				So(toAdd, ShouldResemble, []model.Flag{model.FlagFlightRisk})
				So(toRemove, ShouldResemble, []model.Flag{model.FlagPromotionReady})
			})
		})

		Convey("When diffing identical sets in different order", func() {
			toAdd, toRemove := model.DiffFlags(
				[]model.Flag{model.FlagHighImpact, model.FlagNewToRole},
				[]model.Flag{model.FlagNewToRole, model.FlagHighImpact},
			)

			Convey("Then nothing changes", func() {
				So(toAdd, ShouldBeNil)
				So(toRemove, ShouldBeNil)
			})
		})
	})
}

func TestDonutState(t *testing.T) {
	Convey("Given a donut shadow", t, func() {
		Convey("Then the zero value reports empty", func() {
			So(model.DonutState{}.IsZero(), ShouldBeTrue)
		})

		Convey("Then a placed shadow does not", func() {
			d := model.DonutState{Performance: model.RatingHigh, Potential: model.RatingLow, Position: 3}
			So(d.IsZero(), ShouldBeFalse)
		})
	})
}
