package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/etude/internal/domain/difficulty"
	"github.com/okian/etude/internal/domain/record"
	types "github.com/okian/etude/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewScoreView(t *testing.T) {
	Convey("Given an applicable grade", t, func() {
		grade := difficulty.New(&record.Score{
			InstrumentList: "Violin",
			Interval:       record.Int64(19),
			Chromatic:      record.Float64(0.35),
		}).Result()
		view := types.NewScoreView("partita-2", "Partita No. 2", grade, nil)

		Convey("Then the level and breakdown are set", func() {
			So(view.Applicable, ShouldBeTrue)
			So(view.Instrument, ShouldEqual, "strings")
			So(view.Difficulty, ShouldEqual, int(grade.Level))
			So(view.Label, ShouldEqual, grade.Level.Label())
			So(view.Breakdown, ShouldNotBeNil)
			So(view.Omitted, ShouldResemble, []difficulty.Metric{difficulty.Speed})
		})

		Convey("And the JSON carries the breakdown summary", func() {
			raw, err := json.Marshal(view)
			So(err, ShouldBeNil)
			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)
			So(decoded["breakdown"], ShouldContainKey, "summary")
			So(decoded, ShouldNotContainKey, "reason")
		})
	})

	Convey("Given an inapplicable grade", t, func() {
		grade := difficulty.New(&record.Score{InstrumentList: "Soprano, Piano", Vocal: record.Bool(true)}).Result()
		view := types.NewScoreView("lied", "", grade, nil)

		Convey("Then only the gate outcome is exposed", func() {
			So(view.Applicable, ShouldBeFalse)
			So(view.Reason, ShouldEqual, "accompanied_vocal")
			So(view.Difficulty, ShouldEqual, 0)
			So(view.Breakdown, ShouldBeNil)

			raw, err := json.Marshal(view)
			So(err, ShouldBeNil)
			So(string(raw), ShouldNotContainSubstring, "difficulty")
			So(string(raw), ShouldNotContainSubstring, "breakdown")
		})
	})
}

func TestSubmissionRequest(t *testing.T) {
	Convey("Given a submission body", t, func() {
		body := `{"submission_id":"s1","record_id":"r1","record":{"instruments":"Flute","event_count":400,"measure_count":50}}`
		var req types.SubmissionRequest

		Convey("When it is decoded", func() {
			err := json.Unmarshal([]byte(body), &req)

			Convey("Then the nested record keeps absent fields nil", func() {
				So(err, ShouldBeNil)
				So(req.SubmissionID, ShouldEqual, "s1")
				So(req.Record.InstrumentList, ShouldEqual, "Flute")
				So(*req.Record.Events, ShouldEqual, 400)
				So(req.Record.Duration, ShouldBeNil)
			})
		})
	})
}
