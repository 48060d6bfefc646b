package difficulty

import (
	"fmt"
	"sort"
	"strings"
)

// Metric is a weighted difficulty dimension.
type Metric string

// Difficulty metrics, in the order they are evaluated and reported.
const (
	Speed     Metric = "speed"
	ChordSpan Metric = "chord_span"
	Interval  Metric = "interval"
	Chromatic Metric = "chromatic"
	Range     Metric = "range"
	Leap      Metric = "leap"
)

// Metrics lists every metric in evaluation order.
func Metrics() []Metric {
	return []Metric{Speed, ChordSpan, Interval, Chromatic, Range, Leap}
}

// ParseMetric maps a metric name to a Metric.
func ParseMetric(s string) (Metric, error) {
	want := Metric(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range Metrics() {
		if m == want {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

func metricOrder(m Metric) int {
	for i, candidate := range Metrics() {
		if candidate == m {
			return i
		}
	}
	return len(Metrics())
}

// Weight pairs a metric with its contribution to the weighted ratio.
type Weight struct {
	Metric Metric
	Weight float64
}

var defaultWeights = map[Instrument][]Weight{
	Keyboard: {{Speed, 2.5}, {ChordSpan, 2.5}, {Interval, 1.0}, {Chromatic, 0.5}},
	Guitar:   {{Speed, 3.0}, {Range, 2.0}, {Chromatic, 1.0}},
	Strings:  {{Speed, 1.5}, {Interval, 2.5}, {Chromatic, 2.5}},
	Wind:     {{Speed, 2.0}, {Interval, 1.5}, {Chromatic, 2.0}, {Range, 1.5}},
	Voice:    {{Speed, 1.0}, {Interval, 2.0}, {Chromatic, 3.0}, {Range, 2.0}, {Leap, 2.5}},
	Harp:     {{Speed, 2.0}, {ChordSpan, 2.0}, {Interval, 1.5}, {Chromatic, 1.5}},
	Generic:  {{Speed, 1.5}, {Interval, 1.5}, {Chromatic, 1.5}, {Leap, 1.5}},
}

// Minimum events per measure for note density to stand in for throughput.
// Sparser density says too little about speed and is omitted.
var defaultDensityFloors = map[Instrument]float64{
	Keyboard: 8,
	Guitar:   6,
	Strings:  8,
	Wind:     7,
	Voice:    10,
	Harp:     8,
	Generic:  8,
}

// Policy holds the weight tables and density floors used by a Calculator.
// A Policy is immutable once built and safe for concurrent use.
type Policy struct {
	weights map[Instrument][]Weight
	floors  map[Instrument]float64
}

// PolicyOption customizes a Policy under construction.
type PolicyOption func(*Policy) error

// WithWeights replaces the weight table of one category. Metrics are
// evaluated in the canonical metric order regardless of map order. The
// table must name at least one metric.
func WithWeights(inst Instrument, weights map[Metric]float64) PolicyOption {
	return func(p *Policy) error {
		if _, ok := defaultWeights[inst]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownInstrument, inst)
		}
		if len(weights) == 0 {
			return fmt.Errorf("%w: %s has no weights", ErrInvalidWeight, inst)
		}
		table := make([]Weight, 0, len(weights))
		for m, w := range weights {
			if metricOrder(m) == len(Metrics()) {
				return fmt.Errorf("%w: %q", ErrUnknownMetric, m)
			}
			if w <= 0 {
				return fmt.Errorf("%w: %s.%s = %v", ErrInvalidWeight, inst, m, w)
			}
			table = append(table, Weight{Metric: m, Weight: w})
		}
		sort.Slice(table, func(i, j int) bool {
			return metricOrder(table[i].Metric) < metricOrder(table[j].Metric)
		})
		p.weights[inst] = table
		return nil
	}
}

// WithDensityFloor overrides the note density floor of one category.
func WithDensityFloor(inst Instrument, floor float64) PolicyOption {
	return func(p *Policy) error {
		if _, ok := defaultDensityFloors[inst]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownInstrument, inst)
		}
		if floor < 0 {
			return fmt.Errorf("%w: %s = %v", ErrInvalidFloor, inst, floor)
		}
		p.floors[inst] = floor
		return nil
	}
}

// NewPolicy builds a Policy from the default tables and the given overrides.
func NewPolicy(opts ...PolicyOption) (*Policy, error) {
	p := &Policy{
		weights: make(map[Instrument][]Weight, len(defaultWeights)),
		floors:  make(map[Instrument]float64, len(defaultDensityFloors)),
	}
	for inst, table := range defaultWeights {
		p.weights[inst] = append([]Weight(nil), table...)
	}
	for inst, floor := range defaultDensityFloors {
		p.floors[inst] = floor
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

var defaultPolicy, _ = NewPolicy()

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() *Policy { return defaultPolicy }

// Weights returns a copy of the weight table for inst.
func (p *Policy) Weights(inst Instrument) []Weight {
	return append([]Weight(nil), p.weights[inst]...)
}

// DensityFloor returns the note density floor for inst.
func (p *Policy) DensityFloor(inst Instrument) float64 {
	return p.floors[inst]
}
