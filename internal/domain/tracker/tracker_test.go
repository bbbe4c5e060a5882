package tracker_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/okian/ninebox/internal/domain/event"
	"github.com/okian/ninebox/internal/domain/model"
	"github.com/okian/ninebox/internal/domain/tracker"
	. "github.com/smartystreets/goconvey/convey"
)

func baselineAt(perf, pot model.Rating) model.Employee {
	e := model.Employee{ID: 1, Name: "Ken Thompson", Flags: []model.Flag{model.FlagPromotionReady}}
	e.SetPlacement(perf, pot)
	return e
}

func TestTrackSupersession(t *testing.T) {
	Convey("Given a baseline at (high, high)", t, func() {
		baseline := baselineAt(model.RatingHigh, model.RatingHigh)
		now := time.Now()
		var log []event.Event

		Convey("When tracking a first move", func() {
			ev := event.NewGridMove("ev-1", now, baseline, model.RatingMedium, model.RatingMedium)
			res := tracker.Track(log, ev, baseline)

			Convey("Then the event is kept with nothing superseded", func() {
				So(res.Kept, ShouldBeTrue)
				So(res.Superseded, ShouldEqual, 0)
				So(res.Log, ShouldHaveLength, 1)
			})

			Convey("When tracking a second move for the same employee", func() {
				current := baseline.Clone()
				current.SetPlacement(model.RatingMedium, model.RatingMedium)
				second := event.NewGridMove("ev-2", now.Add(time.Second), current, model.RatingLow, model.RatingLow)
				res2 := tracker.Track(res.Log, second, baseline)

				Convey("Then the first entry is fully superseded", func() {
					So(res2.Kept, ShouldBeTrue)
					So(res2.Superseded, ShouldEqual, 1)
					So(res2.Log, ShouldHaveLength, 1)
					So(res2.Log[0].Header().ID, ShouldEqual, "ev-2")
				})
			})
		})

		Convey("When the new event returns to the baseline placement", func() {
			first := event.NewGridMove("ev-1", now, baseline, model.RatingMedium, model.RatingMedium)
			res := tracker.Track(log, first, baseline)

			current := baseline.Clone()
			current.SetPlacement(model.RatingMedium, model.RatingMedium)
			back := event.NewGridMove("ev-2", now.Add(time.Second), current, model.RatingHigh, model.RatingHigh)
			res2 := tracker.Track(res.Log, back, baseline)

			Convey("Then the log is empty again", func() {
				So(res2.Kept, ShouldBeFalse)
				So(res2.Superseded, ShouldEqual, 1)
				So(res2.Log, ShouldHaveLength, 0)
			})
		})
	})
}

func TestIdempotentConvergence(t *testing.T) {
	Convey("Given any sequence of moves ending at the baseline placement", t, func() {
		baseline := baselineAt(model.RatingHigh, model.RatingHigh)
		now := time.Now()

		hops := [][2]model.Rating{
			{model.RatingLow, model.RatingLow},
			{model.RatingMedium, model.RatingHigh},
			{model.RatingLow, model.RatingMedium},
			{model.RatingMedium, model.RatingMedium},
			{model.RatingHigh, model.RatingHigh}, // back to baseline
		}

		current := baseline.Clone()
		var log []event.Event
		for i, hop := range hops {
			ev := event.NewGridMove(fmt.Sprintf("ev-%d", i), now.Add(time.Duration(i)*time.Second), current, hop[0], hop[1])
			res := tracker.Track(log, ev, baseline)
			log = res.Log
			current.SetPlacement(hop[0], hop[1])
		}

		Convey("Then no entry survives, regardless of intermediate hops", func() {
			So(log, ShouldHaveLength, 0)
		})
	})
}

func TestSingleEntryInvariant(t *testing.T) {
	Convey("Given many moves for the same employee", t, func() {
		baseline := baselineAt(model.RatingHigh, model.RatingHigh)
		now := time.Now()

		hops := [][2]model.Rating{
			{model.RatingLow, model.RatingLow},
			{model.RatingMedium, model.RatingMedium},
			{model.RatingLow, model.RatingHigh},
			{model.RatingMedium, model.RatingLow},
		}

		current := baseline.Clone()
		var log []event.Event
		for i, hop := range hops {
			ev := event.NewGridMove(fmt.Sprintf("ev-%d", i), now.Add(time.Duration(i)*time.Second), current, hop[0], hop[1])
			log = tracker.Track(log, ev, baseline).Log
			current.SetPlacement(hop[0], hop[1])
		}

		Convey("Then at most one entry exists for the employee", func() {
			So(log, ShouldHaveLength, 1)
		})

		Convey("Then its new fields equal the latest request and its old fields the state before it", func() {
			move := log[0].(*event.GridMove)
			So(move.NewPerformance, ShouldEqual, model.RatingMedium)
			So(move.NewPotential, ShouldEqual, model.RatingLow)
			So(move.OldPerformance, ShouldEqual, model.RatingLow)
			So(move.OldPotential, ShouldEqual, model.RatingHigh)
		})
	})
}

func TestFlagCancellationSymmetry(t *testing.T) {
	Convey("Given a baseline carrying promotion_ready", t, func() {
		baseline := baselineAt(model.RatingHigh, model.RatingHigh)
		now := time.Now()

		Convey("When removing then re-adding the baseline flag", func() {
			var log []event.Event
			log = tracker.Track(log, event.NewFlagRemove("ev-1", now, baseline, model.FlagPromotionReady), baseline).Log
			So(log, ShouldHaveLength, 1)
			log = tracker.Track(log, event.NewFlagAdd("ev-2", now.Add(time.Second), baseline, model.FlagPromotionReady), baseline).Log

			Convey("Then the pair nets to zero entries", func() {
				So(log, ShouldHaveLength, 0)
			})
		})

		Convey("When adding then removing a non-baseline flag", func() {
			var log []event.Event
			log = tracker.Track(log, event.NewFlagAdd("ev-1", now, baseline, model.FlagFlightRisk), baseline).Log
			So(log, ShouldHaveLength, 1)
			log = tracker.Track(log, event.NewFlagRemove("ev-2", now.Add(time.Second), baseline, model.FlagFlightRisk), baseline).Log

			Convey("Then the pair nets to zero entries", func() {
				So(log, ShouldHaveLength, 0)
			})
		})

		Convey("When toggling a flag an odd number of times", func() {
			var log []event.Event
			flips := []bool{true, false, true} // add, remove, add of a non-baseline flag
			for i, add := range flips {
				at := now.Add(time.Duration(i) * time.Second)
				var ev event.Event
				if add {
					ev = event.NewFlagAdd(fmt.Sprintf("ev-%d", i), at, baseline, model.FlagNewToRole)
				} else {
					ev = event.NewFlagRemove(fmt.Sprintf("ev-%d", i), at, baseline, model.FlagNewToRole)
				}
				log = tracker.Track(log, ev, baseline).Log
			}

			Convey("Then exactly one event survives and its direction matches baseline membership", func() {
				So(log, ShouldHaveLength, 1)
				So(log[0].Kind(), ShouldEqual, event.KindFlagAdd)
			})
		})

		Convey("When two different flags change", func() {
			var log []event.Event
			log = tracker.Track(log, event.NewFlagAdd("ev-1", now, baseline, model.FlagFlightRisk), baseline).Log
			log = tracker.Track(log, event.NewFlagAdd("ev-2", now, baseline, model.FlagNewToRole), baseline).Log

			Convey("Then both survive; flag events supersede per flag value, not per employee", func() {
				So(log, ShouldHaveLength, 2)
			})
		})
	})
}

func TestNotesNotCarriedAcrossSupersession(t *testing.T) {
	Convey("Given a baseline at (high, high)", t, func() {
		baseline := baselineAt(model.RatingHigh, model.RatingHigh)
		now := time.Now()

		Convey("When a noted move is superseded by another move", func() {
			var log []event.Event
			log = tracker.Track(log, event.NewGridMove("ev-1", now, baseline, model.RatingMedium, model.RatingMedium), baseline).Log

			_, found := tracker.UpdateNotes(log, "ev-1", "x", now.Add(time.Second))
			So(found, ShouldBeTrue)

			current := baseline.Clone()
			current.SetPlacement(model.RatingMedium, model.RatingMedium)
			log = tracker.Track(log, event.NewGridMove("ev-2", now.Add(2*time.Second), current, model.RatingLow, model.RatingLow), baseline).Log

			Convey("Then one entry remains with old=(medium,medium), new=(low,low) and no notes", func() {
				So(log, ShouldHaveLength, 1)
				move := log[0].(*event.GridMove)
				So(move.OldPerformance, ShouldEqual, model.RatingMedium)
				So(move.OldPotential, ShouldEqual, model.RatingMedium)
				So(move.NewPerformance, ShouldEqual, model.RatingLow)
				So(move.NewPotential, ShouldEqual, model.RatingLow)
				So(move.Header().Notes, ShouldEqual, "")
			})
		})
	})
}

func TestEmployeeEvents(t *testing.T) {
	Convey("Given a log with entries for two employees", t, func() {
		baseline := baselineAt(model.RatingHigh, model.RatingHigh)
		other := model.Employee{ID: 2, Name: "Radia Perlman"}
		other.SetPlacement(model.RatingLow, model.RatingLow)
		now := time.Now()

		var log []event.Event
		log = tracker.Track(log, event.NewFlagAdd("ev-1", now, baseline, model.FlagFlightRisk), baseline).Log
		log = tracker.Track(log, event.NewGridMove("ev-2", now.Add(2*time.Second), other, model.RatingMedium, model.RatingMedium), other).Log
		log = tracker.Track(log, event.NewFlagAdd("ev-3", now.Add(time.Second), baseline, model.FlagNewToRole), baseline).Log

		Convey("When listing events for one employee", func() {
			events := tracker.EmployeeEvents(log, 1)

			Convey("Then only that employee's entries return, newest first", func() {
				So(events, ShouldHaveLength, 2)
				So(events[0].Header().ID, ShouldEqual, "ev-3")
				So(events[1].Header().ID, ShouldEqual, "ev-1")
			})
		})

		Convey("When checking membership", func() {
			So(tracker.HasEmployeeEvents(log, 1), ShouldBeTrue)
			So(tracker.HasEmployeeEvents(log, 99), ShouldBeFalse)
		})
	})
}

func TestRemove(t *testing.T) {
	Convey("Given a log with one entry", t, func() {
		baseline := baselineAt(model.RatingHigh, model.RatingHigh)
		now := time.Now()
		log := tracker.Track(nil, event.NewFlagAdd("ev-1", now, baseline, model.FlagFlightRisk), baseline).Log

		Convey("When removing by id", func() {
			out, removed := tracker.Remove(log, "ev-1")

			So(removed, ShouldBeTrue)
			So(out, ShouldHaveLength, 0)
		})

		Convey("When removing an absent id", func() {
			out, removed := tracker.Remove(log, "missing")

			Convey("Then nothing happens and no error is raised", func() {
				So(removed, ShouldBeFalse)
				So(out, ShouldHaveLength, 1)
			})
		})

		Convey("When locating an entry by id", func() {
			found, ok := tracker.Find(log, "ev-1")
			So(ok, ShouldBeTrue)
			So(found.Header().ID, ShouldEqual, "ev-1")

			_, ok = tracker.Find(log, "missing")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestUpdateNotes(t *testing.T) {
	Convey("Given a log with one entry", t, func() {
		baseline := baselineAt(model.RatingHigh, model.RatingHigh)
		now := time.Now()
		log := tracker.Track(nil, event.NewGridMove("ev-1", now, baseline, model.RatingLow, model.RatingLow), baseline).Log

		Convey("When updating notes on an existing entry", func() {
			later := now.Add(time.Minute)
			updated, found := tracker.UpdateNotes(log, "ev-1", "check in next quarter", later)

			Convey("Then notes are set and the timestamp bumped", func() {
				So(found, ShouldBeTrue)
				So(updated.Header().Notes, ShouldEqual, "check in next quarter")
				So(updated.Header().UpdatedAt, ShouldEqual, later)
			})
		})

		Convey("When updating notes on a missing id", func() {
			updated, found := tracker.UpdateNotes(log, "missing", "x", now)

			Convey("Then nothing is mutated", func() {
				So(found, ShouldBeFalse)
				So(updated, ShouldBeNil)
				So(log[0].Header().Notes, ShouldEqual, "")
			})
		})
	})
}
