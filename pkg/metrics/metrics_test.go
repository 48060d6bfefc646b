package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors use the default namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "etude")
				So(manager.subsystem, ShouldEqual, "difficulty")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.scoresComputed.WithLabelValues("keyboard", "Advanced").Inc()

			Convey("Then the options are applied to registered metrics", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, mf := range families {
					if mf.GetName() == "test_unit_scores_computed_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel(), ShouldHaveLength, 3)
					}
				}
				So(found, ShouldBeTrue)
				So(manager.latencyBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "etude")
				So(manager.latencyBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestScoringMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When an applicable score is recorded", func() {
			before := testutil.ToFloat64(globalManager.scoresComputed.WithLabelValues("strings", "Expert"))
			RecordScore("strings", "Expert", 0.95)

			Convey("Then the labelled counter increases", func() {
				after := testutil.ToFloat64(globalManager.scoresComputed.WithLabelValues("strings", "Expert"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When an inapplicable record is recorded", func() {
			before := testutil.ToFloat64(globalManager.scoresInapplicable.WithLabelValues("ensemble"))
			RecordInapplicable("ensemble")

			Convey("Then the reason counter increases", func() {
				So(testutil.ToFloat64(globalManager.scoresInapplicable.WithLabelValues("ensemble"))-before, ShouldEqual, 1)
			})
		})

		Convey("When an omitted metric is recorded", func() {
			before := testutil.ToFloat64(globalManager.metricsOmitted.WithLabelValues("chord_span"))
			RecordOmittedMetric("chord_span")
			RecordOmittedMetric("chord_span")

			Convey("Then the metric counter increases per call", func() {
				So(testutil.ToFloat64(globalManager.metricsOmitted.WithLabelValues("chord_span"))-before, ShouldEqual, 2)
			})
		})
	})
}

func TestServiceMetrics(t *testing.T) {
	Convey("Given service metrics", t, func() {
		Convey("When queue gauges are updated", func() {
			UpdateQueueCapacity(100)
			UpdateQueueSize(25, 100)

			Convey("Then size and utilization reflect the update", func() {
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 25)
				So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.25)
			})
		})

		Convey("When repository counts are updated", func() {
			UpdateRepositoryRecords(10, 7)

			Convey("Then both gauges are set", func() {
				So(testutil.ToFloat64(globalManager.repositoryRecords), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.repositoryRanked), ShouldEqual, 7)
			})
		})

		Convey("When counters and histograms are recorded", func() {
			Convey("Then no call panics", func() {
				So(func() {
					RecordScoringLatency(1.5)
					RecordSubmissionAccepted()
					RecordSubmissionDuplicate()
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerCount(4)
					RecordWorkerProcessingLatency(2)
					RecordWorkerError()
					RecordRepositoryUpdateLatency(0.1)
					RecordRepositoryQueryLatency(0.1)
					RecordRepositorySnapshot(0.3, 1_700_000_000)
					RecordHTTPRequest("/evaluate", "POST", "200", 3)
					RecordError("api", "bad_request")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When the registry is gathered", func() {
			families, err := GetRegistry().Gather()

			Convey("Then domain families are present", func() {
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, mf := range families {
					names[mf.GetName()] = true
				}
				So(names["etude_difficulty_queue_size"], ShouldBeTrue)
				So(names["etude_difficulty_repository_records"], ShouldBeTrue)
			})
		})
	})
}
