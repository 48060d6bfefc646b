// Package difficulty grades how hard a solo score is to perform.
//
// A Calculator classifies the record's instrument, scores each metric in the
// instrument's weight table on a 0..1 scale via threshold bands, and maps the
// weighted achieved/max ratio to a level from 1 to 5. Metrics without source
// data are omitted from both sides of the ratio.
package difficulty

import (
	"strings"
	"sync"

	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/scoremetrics"
)

// Reason explains why a record is not gradable.
type Reason string

// Inapplicability reasons. Empty means applicable.
const (
	ReasonNone             Reason = ""
	ReasonAccompaniedVocal Reason = "accompanied_vocal"
	ReasonEnsemble         Reason = "ensemble"
	ReasonNoInstrument     Reason = "no_instrument"
)

// Result is the outcome of grading one record.
type Result struct {
	Applicable bool
	Reason     Reason
	Instrument Instrument
	Level      Level
	Breakdown  Breakdown
	// Omitted lists weighted metrics skipped for lack of source data.
	Omitted []Metric
}

// Label returns the level label, or "" when not applicable.
func (r Result) Label() string {
	if !r.Applicable {
		return ""
	}
	return r.Level.Label()
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithPolicy sets the weight and floor policy. Nil keeps the default.
func WithPolicy(p *Policy) Option {
	return func(c *Calculator) {
		if p != nil {
			c.policy = p
		}
	}
}

// Calculator grades a single record. Results are memoized per instance; a
// Calculator must not be reused for another record.
type Calculator struct {
	rec     record.Attributes
	policy  *Policy
	metrics *scoremetrics.Calculator

	gateOnce   sync.Once
	applicable bool
	reason     Reason

	instOnce   sync.Once
	instrument Instrument

	computeOnce sync.Once
	result      Result
}

// New returns a Calculator for rec.
func New(rec record.Attributes, opts ...Option) *Calculator {
	c := &Calculator{
		rec:     rec,
		policy:  DefaultPolicy(),
		metrics: scoremetrics.New(rec),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Applicable reports whether the record is a true solo piece: an
// unaccompanied vocal line, or exactly one named instrument.
func (c *Calculator) Applicable() bool {
	c.gateOnce.Do(func() {
		c.reason = c.gate()
		c.applicable = c.reason == ReasonNone
	})
	return c.applicable
}

// Reason returns why the record is not applicable, or ReasonNone.
func (c *Calculator) Reason() Reason {
	c.Applicable()
	return c.reason
}

func (c *Calculator) gate() Reason {
	blank := record.Blank(c.rec, record.Instruments)
	if vocal, ok := c.rec.Flag(record.HasVocal); ok && vocal {
		if !blank {
			return ReasonAccompaniedVocal
		}
		return ReasonNone
	}
	if blank {
		return ReasonNoInstrument
	}
	if strings.Contains(c.rec.Text(record.Instruments), ",") {
		return ReasonEnsemble
	}
	return ReasonNone
}

// Instrument returns the detected instrument category.
func (c *Calculator) Instrument() Instrument {
	c.instOnce.Do(func() {
		c.instrument = DetectInstrument(c.rec)
	})
	return c.instrument
}

// Difficulty returns the level 1..5, or false when not applicable.
func (c *Calculator) Difficulty() (int, bool) {
	if !c.Applicable() {
		return 0, false
	}
	return int(c.compute().Level), true
}

// Label returns the level label, or false when not applicable.
func (c *Calculator) Label() (string, bool) {
	if !c.Applicable() {
		return "", false
	}
	return c.compute().Level.Label(), true
}

// Breakdown returns per-metric scores and the weighted summary, or false
// when not applicable.
func (c *Calculator) Breakdown() (Breakdown, bool) {
	if !c.Applicable() {
		return Breakdown{}, false
	}
	return c.compute().Breakdown.clone(), true
}

// Result returns the full outcome. Inapplicable records carry only the gate
// decision and the detected instrument.
func (c *Calculator) Result() Result {
	if !c.Applicable() {
		return Result{Reason: c.reason, Instrument: c.Instrument()}
	}
	r := c.compute()
	r.Breakdown = r.Breakdown.clone()
	r.Omitted = append([]Metric(nil), r.Omitted...)
	return r
}

func (c *Calculator) compute() Result {
	c.computeOnce.Do(func() {
		inst := c.Instrument()
		b := Breakdown{Metrics: make(map[Metric]MetricScore)}
		var omitted []Metric
		for _, w := range c.policy.Weights(inst) {
			score, ok := scorers[w.Metric](c, inst)
			if !ok {
				omitted = append(omitted, w.Metric)
				continue
			}
			score.Weight = w.Weight
			b.Metrics[w.Metric] = score
			b.Summary.Achieved += score.Score * w.Weight
			b.Summary.Max += w.Weight
		}
		if b.Summary.Max > 0 {
			b.Summary.Ratio = b.Summary.Achieved / b.Summary.Max
		}
		c.result = Result{
			Applicable: true,
			Instrument: inst,
			Level:      RatioToDifficulty(b.Summary.Achieved, b.Summary.Max),
			Breakdown:  b,
			Omitted:    omitted,
		}
	})
	return c.result
}
