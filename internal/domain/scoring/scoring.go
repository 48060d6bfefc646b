// Package scoring defines the contract for grading score records.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/etude/internal/domain/difficulty"
	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/scoremetrics"
	"github.com/okian/etude/pkg/metrics"
)

// ErrNoRecord is returned when an input carries no record.
var ErrNoRecord = errors.New("scoring input has no record")

// Option applies a configuration option to the DifficultyScorer.
type Option func(*DifficultyScorer)

// WithPolicy sets the weight and density floor policy. Nil keeps the default.
func WithPolicy(p *difficulty.Policy) Option {
	return func(s *DifficultyScorer) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithMetricsRecording toggles Prometheus recording. Batch runs turn it off.
func WithMetricsRecording(enabled bool) Option {
	return func(s *DifficultyScorer) {
		s.record = enabled
	}
}

// Input is one record to grade.
type Input struct {
	RecordID string
	Record   record.Attributes
}

// Result contains the grade and the raw derived metrics of a record.
type Result struct {
	RecordID string
	Grade    difficulty.Result
	Metrics  map[scoremetrics.Name]float64
}

// Scorer grades an input.
type Scorer interface {
	// Score computes a grade, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// DifficultyScorer implements Scorer with the difficulty engine.
type DifficultyScorer struct {
	policy *difficulty.Policy
	record bool
}

// NewDifficultyScorer creates a scorer with configuration options.
func NewDifficultyScorer(opts ...Option) *DifficultyScorer {
	s := &DifficultyScorer{
		policy: difficulty.DefaultPolicy(),
		record: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the policy in use.
func (s *DifficultyScorer) Policy() *difficulty.Policy {
	return s.policy
}

// Score grades the input record.
func (s *DifficultyScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	if in.Record == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoRecord, in.RecordID)
	}

	start := time.Now()
	grade := difficulty.New(in.Record, difficulty.WithPolicy(s.policy)).Result()
	res := Result{
		RecordID: in.RecordID,
		Grade:    grade,
		Metrics:  scoremetrics.New(in.Record).Snapshot(),
	}

	if s.record {
		s.observe(grade, time.Since(start))
	}
	return res, nil
}

func (s *DifficultyScorer) observe(grade difficulty.Result, elapsed time.Duration) {
	metrics.RecordScoringLatency(float64(elapsed.Microseconds()) / 1000)
	if !grade.Applicable {
		metrics.RecordInapplicable(string(grade.Reason))
		return
	}
	metrics.RecordScore(string(grade.Instrument), grade.Label(), grade.Breakdown.Summary.Ratio)
	for _, m := range grade.Omitted {
		metrics.RecordOmittedMetric(string(m))
	}
}
