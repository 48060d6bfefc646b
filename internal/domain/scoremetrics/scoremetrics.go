// Package scoremetrics derives continuous rates from the raw counts on a
// score record.
//
// Every derived metric decides on its own whether it is computable. A metric
// whose inputs are missing is reported as unavailable (ok == false); it is
// never replaced by zero, so the difficulty model can omit it cleanly.
package scoremetrics

import "github.com/okian/etude/internal/domain/record"

// Name identifies a derived metric.
type Name string

// Derived metrics.
const (
	Throughput      Name = "throughput"
	NoteDensity     Name = "note_density"
	HarmonicRhythm  Name = "harmonic_rhythm"
	LeapFrequency   Name = "leap_frequency"
	ChromaticRatio  Name = "chromatic_ratio"
	OrnamentDensity Name = "ornament_density"
	Syncopation     Name = "syncopation"
)

// Names lists every derived metric in a stable order.
func Names() []Name {
	return []Name{Throughput, NoteDensity, HarmonicRhythm, LeapFrequency, ChromaticRatio, OrnamentDensity, Syncopation}
}

// Calculator computes derived metrics for a single record.
type Calculator struct {
	rec record.Attributes
}

// New returns a Calculator reading from rec.
func New(rec record.Attributes) *Calculator {
	return &Calculator{rec: rec}
}

// Throughput returns events per second of performance time. The extracted
// duration wins when positive; otherwise the estimated duration is used.
func (c *Calculator) Throughput() (float64, bool) {
	events, ok := c.rec.Number(record.EventCount)
	if !ok {
		return 0, false
	}
	duration, ok := c.duration()
	if !ok {
		return 0, false
	}
	return events / duration, true
}

func (c *Calculator) duration() (float64, bool) {
	if d, ok := c.rec.Number(record.DurationSeconds); ok && d > 0 {
		return d, true
	}
	if d, ok := c.rec.Number(record.EstimatedDurationSeconds); ok && d > 0 {
		return d, true
	}
	return 0, false
}

// NoteDensity returns events per measure.
func (c *Calculator) NoteDensity() (float64, bool) {
	return c.perMeasure(record.EventCount)
}

// HarmonicRhythm returns chords per measure.
func (c *Calculator) HarmonicRhythm() (float64, bool) {
	return c.perMeasure(record.ChordCount)
}

// LeapFrequency returns the share of events that are melodic leaps (0..1).
func (c *Calculator) LeapFrequency() (float64, bool) {
	leaps, ok := c.rec.Number(record.LeapCount)
	if !ok {
		return 0, false
	}
	return c.perEvent(leaps)
}

// Syncopation returns the share of events that start off the beat (0..1).
func (c *Calculator) Syncopation() (float64, bool) {
	offBeats, ok := c.rec.Number(record.OffBeatCount)
	if !ok {
		return 0, false
	}
	return c.perEvent(offBeats)
}

// ChromaticRatio returns the fraction of pitches outside the key. A present
// chromatic_ratio is passed through unchanged and the counts are ignored, so
// a record carrying only the ratio behaves as a pure pass-through. Only when
// the ratio is absent and both chromatic_note_count and a positive
// pitch_count are present is the ratio derived from the counts.
func (c *Calculator) ChromaticRatio() (float64, bool) {
	if r, ok := c.rec.Number(record.ChromaticRatio); ok {
		return r, true
	}
	chromatic, ok := c.rec.Number(record.ChromaticNoteCount)
	if !ok {
		return 0, false
	}
	pitches, ok := c.rec.Number(record.PitchCount)
	if !ok || pitches <= 0 {
		return 0, false
	}
	return chromatic / pitches, true
}

// OrnamentDensity returns trills, mordents and turns per measure. Missing
// ornament counts are skipped; the metric is unavailable only when all of
// them are missing.
func (c *Calculator) OrnamentDensity() (float64, bool) {
	var (
		total float64
		seen  bool
	)
	for _, f := range []record.Field{record.TrillCount, record.MordentCount, record.TurnCount} {
		if n, ok := c.rec.Number(f); ok {
			total += n
			seen = true
		}
	}
	if !seen {
		return 0, false
	}
	measures, ok := c.measures()
	if !ok {
		return 0, false
	}
	return total / measures, true
}

// Get dispatches to the metric named n.
func (c *Calculator) Get(n Name) (float64, bool) {
	switch n {
	case Throughput:
		return c.Throughput()
	case NoteDensity:
		return c.NoteDensity()
	case HarmonicRhythm:
		return c.HarmonicRhythm()
	case LeapFrequency:
		return c.LeapFrequency()
	case ChromaticRatio:
		return c.ChromaticRatio()
	case OrnamentDensity:
		return c.OrnamentDensity()
	case Syncopation:
		return c.Syncopation()
	default:
		return 0, false
	}
}

// Snapshot returns every available metric. Unavailable metrics are absent
// from the map.
func (c *Calculator) Snapshot() map[Name]float64 {
	out := make(map[Name]float64, len(Names()))
	for _, n := range Names() {
		if v, ok := c.Get(n); ok {
			out[n] = v
		}
	}
	return out
}

func (c *Calculator) perMeasure(f record.Field) (float64, bool) {
	n, ok := c.rec.Number(f)
	if !ok {
		return 0, false
	}
	measures, ok := c.measures()
	if !ok {
		return 0, false
	}
	return n / measures, true
}

func (c *Calculator) measures() (float64, bool) {
	m, ok := c.rec.Number(record.MeasureCount)
	if !ok || m <= 0 {
		return 0, false
	}
	return m, true
}

func (c *Calculator) perEvent(n float64) (float64, bool) {
	events, ok := c.rec.Number(record.EventCount)
	if !ok || events <= 0 {
		return 0, false
	}
	return n / events, true
}
