package difficulty_test

import (
	"testing"

	"github.com/okian/etude/internal/domain/difficulty"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBandsLookup(t *testing.T) {
	Convey("Given a descending threshold table", t, func() {
		table := difficulty.Bands{{8, 1.0}, {5, 0.7}, {2.9, 0.4}}

		Convey("Then values should take the first band they meet", func() {
			So(table.Lookup(12), ShouldEqual, 1.0)
			So(table.Lookup(8), ShouldEqual, 1.0)
			So(table.Lookup(7.99), ShouldEqual, 0.7)
			So(table.Lookup(2.9), ShouldEqual, 0.4)
		})

		Convey("Then values below every band should score zero", func() {
			So(table.Lookup(2.0), ShouldEqual, 0.0)
			So(table.Lookup(-1), ShouldEqual, 0.0)
		})
	})

	Convey("Given an empty table", t, func() {
		So(difficulty.Bands{}.Lookup(100), ShouldEqual, 0.0)
	})
}

func TestRatioToDifficulty(t *testing.T) {
	Convey("Given achieved and maximum points", t, func() {
		So(difficulty.RatioToDifficulty(0, 0), ShouldEqual, difficulty.Beginner)
		So(difficulty.RatioToDifficulty(3, -1), ShouldEqual, difficulty.Beginner)
		So(difficulty.RatioToDifficulty(8, 10), ShouldEqual, difficulty.Expert)
		So(difficulty.RatioToDifficulty(7.9, 10), ShouldEqual, difficulty.Advanced)
		So(difficulty.RatioToDifficulty(6, 10), ShouldEqual, difficulty.Advanced)
		So(difficulty.RatioToDifficulty(4, 10), ShouldEqual, difficulty.Intermediate)
		So(difficulty.RatioToDifficulty(2, 10), ShouldEqual, difficulty.Easy)
		So(difficulty.RatioToDifficulty(1.9, 10), ShouldEqual, difficulty.Beginner)
		So(difficulty.RatioToDifficulty(0, 10), ShouldEqual, difficulty.Beginner)
	})

	Convey("Given every level", t, func() {
		labels := map[difficulty.Level]string{
			difficulty.Beginner:     "beginner",
			difficulty.Easy:         "easy",
			difficulty.Intermediate: "intermediate",
			difficulty.Advanced:     "advanced",
			difficulty.Expert:       "expert",
		}
		for level, label := range labels {
			So(level.Label(), ShouldEqual, label)
		}
		So(difficulty.Level(0).Label(), ShouldEqual, "")
	})
}
