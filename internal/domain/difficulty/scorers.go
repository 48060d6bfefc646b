package difficulty

import (
	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/scoremetrics"
)

// scorerFunc scores one metric. ok is false when the source data is missing;
// a value below every band is a computable zero, not a missing metric.
type scorerFunc func(c *Calculator, inst Instrument) (MetricScore, bool)

var scorers = map[Metric]scorerFunc{
	Speed:     scoreSpeed,
	ChordSpan: scoreChordSpan,
	Interval:  scoreInterval,
	Chromatic: scoreChromatic,
	Range:     scoreRange,
	Leap:      scoreLeap,
}

// ScoreMetric scores a single metric for rec as inst would, using the
// default policy.
func ScoreMetric(rec record.Attributes, inst Instrument, m Metric) (MetricScore, bool) {
	fn, ok := scorers[m]
	if !ok {
		return MetricScore{}, false
	}
	return fn(New(rec), inst)
}

func scoreSpeed(c *Calculator, inst Instrument) (MetricScore, bool) {
	if tp, ok := c.metrics.Throughput(); ok {
		return banded(string(scoremetrics.Throughput), tp, throughputBands), true
	}
	density, ok := c.metrics.NoteDensity()
	if !ok || density < c.policy.DensityFloor(inst) {
		return MetricScore{}, false
	}
	return banded(string(scoremetrics.NoteDensity), density, densityBands), true
}

func scoreChordSpan(c *Calculator, inst Instrument) (MetricScore, bool) {
	return fromField(c, record.MaxChordSpan, chordSpanTable(inst))
}

func scoreInterval(c *Calculator, inst Instrument) (MetricScore, bool) {
	return fromField(c, record.LargestInterval, intervalTable(inst))
}

func scoreRange(c *Calculator, inst Instrument) (MetricScore, bool) {
	return fromField(c, record.AmbitusSemitones, rangeTable(inst))
}

func scoreChromatic(c *Calculator, _ Instrument) (MetricScore, bool) {
	v, ok := c.metrics.ChromaticRatio()
	if !ok {
		return MetricScore{}, false
	}
	return banded(string(scoremetrics.ChromaticRatio), v, chromaticBands), true
}

func scoreLeap(c *Calculator, _ Instrument) (MetricScore, bool) {
	v, ok := c.metrics.LeapFrequency()
	if !ok {
		return MetricScore{}, false
	}
	return banded(string(scoremetrics.LeapFrequency), v, leapBands), true
}

func fromField(c *Calculator, f record.Field, table Bands) (MetricScore, bool) {
	v, ok := c.rec.Number(f)
	if !ok {
		return MetricScore{}, false
	}
	return banded(string(f), v, table), true
}

func banded(source string, v float64, table Bands) MetricScore {
	return MetricScore{Source: source, Value: v, Score: table.Lookup(v)}
}
