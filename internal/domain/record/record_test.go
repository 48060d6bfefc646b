package record_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/okian/etude/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreAttributes(t *testing.T) {
	Convey("Given a score decoded from extractor JSON", t, func() {
		var s record.Score
		err := json.Unmarshal([]byte(`{
			"file_path": "/data/mxl/a.mxl",
			"instruments": " Piano ",
			"event_count": 120,
			"duration_seconds": 61.5,
			"chromatic_ratio": 0.125
		}`), &s)
		So(err, ShouldBeNil)

		Convey("Then present fields should be readable by name", func() {
			So(s.Text(record.Instruments), ShouldEqual, "Piano")
			v, ok := s.Number(record.EventCount)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 120.0)
			v, ok = s.Number(record.DurationSeconds)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 61.5)
		})

		Convey("Then absent fields should report absence, not zero", func() {
			_, ok := s.Number(record.MeasureCount)
			So(ok, ShouldBeFalse)
			_, ok = s.Flag(record.HasVocal)
			So(ok, ShouldBeFalse)
			So(record.Blank(&s, record.Voicing), ShouldBeTrue)
		})

		Convey("Then the key should fall back to the file path", func() {
			So(s.Key(), ShouldEqual, "/data/mxl/a.mxl")
			s.ID = "cpdl-42"
			So(s.Key(), ShouldEqual, "cpdl-42")
		})
	})

	Convey("Given a non-finite measurement", t, func() {
		s := record.Score{Duration: record.Float64(math.NaN())}

		Convey("Then it should be treated as absent", func() {
			_, ok := s.Number(record.DurationSeconds)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMapAttributes(t *testing.T) {
	Convey("Given a loosely typed row", t, func() {
		m := record.Map{
			"instruments":   []string{"Violin", "Piano"},
			"has_vocal":     "false",
			"event_count":   json.Number("300"),
			"measure_count": int64(40),
			"leap_count":    "many",
		}

		Convey("Then values should be coerced where unambiguous", func() {
			So(m.Text(record.Instruments), ShouldEqual, "Violin, Piano")
			vocal, ok := m.Flag(record.HasVocal)
			So(ok, ShouldBeTrue)
			So(vocal, ShouldBeFalse)
			n, ok := m.Number(record.EventCount)
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 300.0)
			n, ok = m.Number(record.MeasureCount)
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 40.0)
		})

		Convey("Then malformed numbers should be absent", func() {
			_, ok := m.Number(record.LeapCount)
			So(ok, ShouldBeFalse)
			_, ok = m.Number(record.TrillCount)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMapFromJSON(t *testing.T) {
	Convey("Given a row decoded from JSON with a list of instruments", t, func() {
		var m record.Map
		err := json.Unmarshal([]byte(`{
			"has_vocal": true,
			"instruments": ["Violin", " Piano ", ""],
			"voicing": ["SATB", 4],
			"num_parts": 4
		}`), &m)
		So(err, ShouldBeNil)

		Convey("Then the list should read as joined text", func() {
			So(m.Text(record.Instruments), ShouldEqual, "Violin, Piano")
			So(record.Blank(m, record.Instruments), ShouldBeFalse)
			So(m.Text(record.Voicing), ShouldEqual, "SATB, 4")
		})

		Convey("Then a non-text scalar should not read as blank", func() {
			So(m.Text(record.NumParts), ShouldEqual, "4")
		})
	})

	Convey("Given a row with an empty or null list", t, func() {
		var m record.Map
		err := json.Unmarshal([]byte(`{"instruments": [], "voicing": null}`), &m)
		So(err, ShouldBeNil)

		Convey("Then both should read as blank", func() {
			So(record.Blank(m, record.Instruments), ShouldBeTrue)
			So(record.Blank(m, record.Voicing), ShouldBeTrue)
		})
	})
}
