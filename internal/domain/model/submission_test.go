package model_test

import (
	"testing"
	"time"

	model "github.com/okian/etude/internal/domain/model"
	"github.com/okian/etude/internal/domain/record"
	"github.com/smartystreets/goconvey/convey"
)

func TestSubmission(t *testing.T) {
	convey.Convey("Given a Submission", t, func() {
		convey.Convey("When the record id is set", func() {
			ts := time.Now()
			sub := model.Submission{
				SubmissionID: "sub-1",
				RecordID:     "bwv-1007",
				Record:       record.Score{ID: "other", InstrumentList: "Cello"},
				TS:           ts,
			}

			convey.Convey("Then it is used as the key", func() {
				convey.So(sub.Key(), convey.ShouldEqual, "bwv-1007")
				convey.So(sub.TS, convey.ShouldEqual, ts)
			})
		})

		convey.Convey("When only the record carries an id", func() {
			sub := model.Submission{Record: record.Score{ID: "bwv-1008"}}

			convey.Convey("Then the record id is used", func() {
				convey.So(sub.Key(), convey.ShouldEqual, "bwv-1008")
			})
		})

		convey.Convey("When the record has only a file path", func() {
			sub := model.Submission{Record: record.Score{FilePath: "scores/bach/bwv1009.mxl"}}

			convey.Convey("Then the file path is used", func() {
				convey.So(sub.Key(), convey.ShouldEqual, "scores/bach/bwv1009.mxl")
			})
		})

		convey.Convey("When nothing identifies the record", func() {
			sub := model.Submission{}

			convey.Convey("Then the key is empty", func() {
				convey.So(sub.Key(), convey.ShouldBeEmpty)
			})
		})
	})
}
