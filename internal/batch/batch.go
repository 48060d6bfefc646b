// Package batch grades many records concurrently.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/okian/etude/internal/domain/difficulty"
	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/scoring"
)

// Options configures a run.
type Options struct {
	// Workers bounds concurrency. Zero means one per CPU.
	Workers int
	// Policy overrides weights and floors. Nil uses the defaults.
	Policy *difficulty.Policy
	// Scorer replaces the difficulty scorer. Policy is ignored when set.
	Scorer scoring.Scorer
}

// Outcome is the grade of one input record.
type Outcome struct {
	RecordID string
	Title    string
	Result   scoring.Result
}

// Summary aggregates a run.
type Summary struct {
	Total        int            `json:"total" yaml:"total"`
	Applicable   int            `json:"applicable" yaml:"applicable"`
	Inapplicable int            `json:"inapplicable" yaml:"inapplicable"`
	ByLevel      map[string]int `json:"by_level" yaml:"by_level"`
	ByInstrument map[string]int `json:"by_instrument" yaml:"by_instrument"`
	ByReason     map[string]int `json:"by_reason,omitempty" yaml:"by_reason,omitempty"`
}

// Run grades records with at most opts.Workers goroutines. Outcomes keep
// the input order.
func Run(ctx context.Context, records []record.Score, opts Options) ([]Outcome, Summary, error) {
	scorer := opts.Scorer
	if scorer == nil {
		scorer = scoring.NewDifficultyScorer(
			scoring.WithPolicy(opts.Policy),
			scoring.WithMetricsRecording(false),
		)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, max(len(records), 1))

	out := make([]Outcome, len(records))
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec := &records[i]
				res, err := scorer.Score(runCtx, scoring.Input{RecordID: rec.Key(), Record: rec})
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("grade %q: %w", rec.Key(), err)
						cancel()
					})
					continue
				}
				out[i] = Outcome{RecordID: res.RecordID, Title: rec.Title, Result: res}
			}
		}()
	}

feed:
	for i := range records {
		select {
		case <-runCtx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, Summary{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, Summary{}, fmt.Errorf("batch cancelled: %w", err)
	}
	return out, Summarize(out), nil
}

// Summarize counts outcomes by level, instrument and reason.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		Total:        len(outcomes),
		ByLevel:      make(map[string]int),
		ByInstrument: make(map[string]int),
		ByReason:     make(map[string]int),
	}
	for i := range outcomes {
		g := outcomes[i].Result.Grade
		if !g.Applicable {
			s.Inapplicable++
			s.ByReason[string(g.Reason)]++
			continue
		}
		s.Applicable++
		s.ByLevel[g.Label()]++
		s.ByInstrument[string(g.Instrument)]++
	}
	return s
}
