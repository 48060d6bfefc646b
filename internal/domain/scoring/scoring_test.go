package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/etude/internal/domain/difficulty"
	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/scoremetrics"
	scoring "github.com/okian/etude/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func pianoEtude() *record.Score {
	return &record.Score{
		ID:             "op10-no1",
		InstrumentList: "Piano",
		Events:         record.Int64(1200),
		Duration:       record.Float64(120),
		Measures:       record.Int64(80),
		ChordSpan:      record.Int64(16),
		Interval:       record.Int64(14),
		Chromatic:      record.Float64(0.3),
	}
}

func TestDifficultyScorer_Score(t *testing.T) {
	Convey("Given a difficulty scorer", t, func() {
		s := scoring.NewDifficultyScorer(scoring.WithMetricsRecording(false))
		ctx := context.Background()

		Convey("When scoring a solo piano record", func() {
			res, err := s.Score(ctx, scoring.Input{RecordID: "op10-no1", Record: pianoEtude()})

			Convey("Then an applicable grade is returned", func() {
				So(err, ShouldBeNil)
				So(res.RecordID, ShouldEqual, "op10-no1")
				So(res.Grade.Applicable, ShouldBeTrue)
				So(res.Grade.Instrument, ShouldEqual, difficulty.Keyboard)
				So(int(res.Grade.Level), ShouldBeBetweenOrEqual, 1, 5)
				So(res.Metrics[scoremetrics.Throughput], ShouldEqual, 10)
			})

			Convey("And the grade matches the engine run directly", func() {
				direct := difficulty.New(pianoEtude()).Result()
				So(res.Grade.Level, ShouldEqual, direct.Level)
				So(res.Grade.Breakdown.Summary, ShouldResemble, direct.Breakdown.Summary)
			})
		})

		Convey("When scoring an ensemble record", func() {
			res, err := s.Score(ctx, scoring.Input{
				RecordID: "quartet",
				Record:   &record.Score{InstrumentList: "Violin, Viola, Cello"},
			})

			Convey("Then the grade is not applicable with a reason", func() {
				So(err, ShouldBeNil)
				So(res.Grade.Applicable, ShouldBeFalse)
				So(res.Grade.Reason, ShouldEqual, difficulty.ReasonEnsemble)
			})
		})

		Convey("When the input has no record", func() {
			_, err := s.Score(ctx, scoring.Input{RecordID: "empty"})

			Convey("Then ErrNoRecord is returned", func() {
				So(errors.Is(err, scoring.ErrNoRecord), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := s.Score(cctx, scoring.Input{RecordID: "x", Record: pianoEtude()})

			Convey("Then the context error is returned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestDifficultyScorer_Policy(t *testing.T) {
	Convey("Given a scorer with a custom policy", t, func() {
		p, err := difficulty.NewPolicy(difficulty.WithWeights(difficulty.Keyboard, map[difficulty.Metric]float64{
			difficulty.ChordSpan: 1,
		}))
		So(err, ShouldBeNil)
		s := scoring.NewDifficultyScorer(scoring.WithPolicy(p), scoring.WithMetricsRecording(false))

		Convey("When scoring a piano record", func() {
			res, err := s.Score(context.Background(), scoring.Input{RecordID: "p", Record: pianoEtude()})

			Convey("Then only the configured metric contributes", func() {
				So(err, ShouldBeNil)
				So(res.Grade.Breakdown.Metrics, ShouldHaveLength, 1)
				So(res.Grade.Breakdown.Summary.Max, ShouldEqual, 1)
				So(s.Policy(), ShouldEqual, p)
			})
		})

		Convey("When a nil policy is given", func() {
			d := scoring.NewDifficultyScorer(scoring.WithPolicy(nil))

			Convey("Then the default policy is kept", func() {
				So(d.Policy(), ShouldEqual, difficulty.DefaultPolicy())
			})
		})
	})
}

func TestDifficultyScorer_RecordsMetrics(t *testing.T) {
	Convey("Given a scorer with metrics enabled", t, func() {
		s := scoring.NewDifficultyScorer()

		Convey("Then scoring applicable and inapplicable records does not fail", func() {
			_, err := s.Score(context.Background(), scoring.Input{RecordID: "a", Record: pianoEtude()})
			So(err, ShouldBeNil)
			_, err = s.Score(context.Background(), scoring.Input{RecordID: "b", Record: &record.Score{}})
			So(err, ShouldBeNil)
		})
	})
}
