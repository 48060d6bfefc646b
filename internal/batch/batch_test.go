package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/scoring"
)

type countingScorer struct {
	inner  scoring.Scorer
	active atomic.Int64
	peak   atomic.Int64
	failOn string
}

func (c *countingScorer) Score(ctx context.Context, in scoring.Input) (scoring.Result, error) {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if in.RecordID == c.failOn {
		return scoring.Result{}, errors.New("boom")
	}
	return c.inner.Score(ctx, in)
}

func sample(n int) []record.Score {
	recs := make([]record.Score, n)
	for i := range recs {
		recs[i] = record.Score{
			ID:             fmt.Sprintf("r%03d", i),
			InstrumentList: "Piano",
			Events:         record.Int64(int64(50 + i*20)),
			Duration:       record.Float64(60),
			Measures:       record.Int64(40),
		}
	}
	return recs
}

func TestRun(t *testing.T) {
	Convey("Given a batch of solo and ensemble records", t, func() {
		recs := sample(40)
		recs[3].InstrumentList = "Violin, Piano"
		recs[7] = record.Score{ID: "song", Vocal: record.Bool(true), InstrumentList: "Piano"}

		Convey("When run with bounded workers", func() {
			cs := &countingScorer{inner: scoring.NewDifficultyScorer(scoring.WithMetricsRecording(false))}
			out, sum, err := Run(context.Background(), recs, Options{Workers: 3, Scorer: cs})

			Convey("Then outcomes keep input order", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, len(recs))
				for i := range recs {
					So(out[i].RecordID, ShouldEqual, recs[i].Key())
				}
			})

			Convey("And concurrency never exceeds the bound", func() {
				So(cs.peak.Load(), ShouldBeLessThanOrEqualTo, 3)
			})

			Convey("And the summary counts levels and reasons", func() {
				So(sum.Total, ShouldEqual, 40)
				So(sum.Applicable, ShouldEqual, 38)
				So(sum.Inapplicable, ShouldEqual, 2)
				So(sum.ByReason["ensemble"], ShouldEqual, 1)
				So(sum.ByReason["accompanied_vocal"], ShouldEqual, 1)
				So(sum.ByInstrument["keyboard"], ShouldEqual, 38)
				levels := 0
				for _, n := range sum.ByLevel {
					levels += n
				}
				So(levels, ShouldEqual, 38)
			})
		})

		Convey("When the scorer fails", func() {
			cs := &countingScorer{
				inner:  scoring.NewDifficultyScorer(scoring.WithMetricsRecording(false)),
				failOn: "r005",
			}
			_, _, err := Run(context.Background(), recs, Options{Workers: 2, Scorer: cs})

			Convey("Then the failing record is named", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "r005")
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, _, err := Run(ctx, recs, Options{Workers: 2})

			Convey("Then the run reports cancellation", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestRunEmpty(t *testing.T) {
	out, sum, err := Run(context.Background(), nil, Options{})
	if err != nil || len(out) != 0 || sum.Total != 0 {
		t.Fatalf("Run(nil) = %v, %+v, %v", out, sum, err)
	}
}
