package repository_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/okian/ninebox/internal/adapters/repository"
	"github.com/okian/ninebox/internal/domain/event"
	"github.com/okian/ninebox/internal/domain/model"
	"github.com/okian/ninebox/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func fixtureState() *session.State {
	created := time.Date(2026, 8, 1, 9, 0, 0, 123456789, time.UTC)

	ada := model.Employee{ID: 1, Name: "Ada Lovelace", Flags: []model.Flag{model.FlagPromotionReady}}
	ada.SetPlacement(model.RatingMedium, model.RatingMedium)
	bob := model.Employee{ID: 2, Name: "Alan Turing"}
	bob.SetPlacement(model.RatingHigh, model.RatingLow)

	state := session.New("sess-1", "subject-1", created, []model.Employee{ada, bob}, session.Provenance{
		Filename: "grid.xlsx",
		Path:     "/imports/grid.xlsx",
		Sheet:    "Q3 Calibration",
	})

	cur, _ := state.FindCurrent(1)
	move := event.NewGridMove("ev-1", created.Add(time.Minute), *cur, model.RatingHigh, model.RatingHigh)
	move.Notes = "stretch assignment delivered"
	state.Events = append(state.Events, move)
	cur.SetPlacement(model.RatingHigh, model.RatingHigh)
	cur.Modified = true
	cur.LastModified = created.Add(time.Minute)

	shadow, _ := state.FindCurrent(2)
	donut := event.NewDonutMove("ev-2", created.Add(2*time.Minute), *shadow, model.RatingLow, model.RatingHigh)
	state.DonutEvents = append(state.DonutEvents, donut)
	shadow.SetDonutPlacement(model.RatingLow, model.RatingHigh)
	shadow.Donut.Modified = true
	shadow.Donut.LastModified = created.Add(2 * time.Minute)

	state.Events = append(state.Events,
		event.NewFlagAdd("ev-3", created.Add(3*time.Minute), *shadow, model.FlagNewToRole),
		event.NewFlagRemove("ev-4", created.Add(4*time.Minute), *cur, model.FlagPromotionReady),
	)
	state.DonutMode = true
	return state
}

func TestStateRoundTrip(t *testing.T) {
	Convey("Given a populated session aggregate", t, func() {
		state := fixtureState()

		Convey("When it is encoded and decoded", func() {
			document, err := repository.EncodeState(state)
			So(err, ShouldBeNil)

			decoded, err := repository.DecodeState(document)
			So(err, ShouldBeNil)

			Convey("Then the aggregate survives byte for byte", func() {
				So(decoded, ShouldResemble, state)
			})

			Convey("Then a second encoding is canonical", func() {
				again, err := repository.EncodeState(decoded)
				So(err, ShouldBeNil)
				So(string(again), ShouldEqual, string(document))
			})
		})
	})

	Convey("Given a freshly created session with empty optionals", t, func() {
		created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
		emp := model.Employee{ID: 7, Name: "Grace Hopper"}
		emp.SetPlacement(model.RatingLow, model.RatingHigh)
		state := session.New("sess-2", "subject-2", created, []model.Employee{emp}, session.Provenance{})

		Convey("When it round-trips", func() {
			document, err := repository.EncodeState(state)
			So(err, ShouldBeNil)
			decoded, err := repository.DecodeState(document)
			So(err, ShouldBeNil)

			Convey("Then zero timestamps, nil flags and empty logs come back as-is", func() {
				So(decoded, ShouldResemble, state)
				So(decoded.Current[0].LastModified.IsZero(), ShouldBeTrue)
				So(decoded.Current[0].Flags, ShouldBeNil)
				So(decoded.Current[0].Donut.IsZero(), ShouldBeTrue)
				So(decoded.Events, ShouldBeNil)
				So(decoded.DonutEvents, ShouldBeNil)
			})
		})
	})
}

func TestWireFormat(t *testing.T) {
	Convey("Given the encoded document", t, func() {
		document, err := repository.EncodeState(fixtureState())
		So(err, ShouldBeNil)

		var wire map[string]json.RawMessage
		So(json.Unmarshal(document, &wire), ShouldBeNil)

		Convey("Then every field is present without omitempty elision", func() {
			for _, key := range []string{
				"id", "subject_id", "created_at", "updated_at", "source",
				"baseline", "current", "events", "donut_events", "donut_mode",
			} {
				_, ok := wire[key]
				So(ok, ShouldBeTrue)
			}
		})

		Convey("Then events carry their canonical type tags", func() {
			var events []map[string]interface{}
			So(json.Unmarshal(wire["events"], &events), ShouldBeNil)
			So(events[0]["type"], ShouldEqual, "grid_move")
			So(events[1]["type"], ShouldEqual, "flag_add")
			So(events[2]["type"], ShouldEqual, "flag_remove")
		})

		Convey("Then ratings serialize as their string labels", func() {
			var baseline []map[string]interface{}
			So(json.Unmarshal(wire["baseline"], &baseline), ShouldBeNil)
			So(baseline[0]["performance"], ShouldEqual, "medium")
			So(baseline[1]["performance"], ShouldEqual, "high")
			So(baseline[1]["potential"], ShouldEqual, "low")
		})
	})
}

func TestDecodeErrors(t *testing.T) {
	Convey("Given corrupted documents", t, func() {
		Convey("When the payload is not JSON", func() {
			_, err := repository.DecodeState([]byte("not json"))
			So(err, ShouldNotBeNil)
		})

		Convey("When an event carries an unknown type tag", func() {
			document := []byte(`{"id":"s","subject_id":"x","created_at":"","updated_at":"",` +
				`"source":{"filename":"","path":"","sheet":""},"baseline":[],"current":[],` +
				`"events":[{"type":"grid_shuffle","id":"e"}],"donut_events":[],"donut_mode":false}`)
			_, err := repository.DecodeState(document)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown type")
		})

		Convey("When a timestamp is malformed", func() {
			document := []byte(`{"id":"s","subject_id":"x","created_at":"yesterday","updated_at":"",` +
				`"source":{"filename":"","path":"","sheet":""},"baseline":[],"current":[],` +
				`"events":[],"donut_events":[],"donut_mode":false}`)
			_, err := repository.DecodeState(document)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "parse timestamp")
		})
	})
}

func TestLargeRoster(t *testing.T) {
	Convey("Given a session with a thousand employees", t, func() {
		employees := make([]model.Employee, 1000)
		for i := range employees {
			employees[i] = model.Employee{ID: i + 1, Name: fmt.Sprintf("Employee %d", i+1)}
			employees[i].SetPlacement(model.RatingMedium, model.RatingHigh)
		}
		state := session.New("sess-big", "subject-big",
			time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC), employees, session.Provenance{})

		Convey("When it round-trips", func() {
			document, err := repository.EncodeState(state)
			So(err, ShouldBeNil)
			decoded, err := repository.DecodeState(document)
			So(err, ShouldBeNil)

			Convey("Then order and content are preserved end to end", func() {
				So(decoded.Current, ShouldHaveLength, 1000)
				So(decoded.Current[0].ID, ShouldEqual, 1)
				So(decoded.Current[999].ID, ShouldEqual, 1000)
				So(decoded, ShouldResemble, state)
			})
		})
	})
}
