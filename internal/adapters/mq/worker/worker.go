// Package worker grades queued submissions and writes the results to the store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/etude/internal/domain/model"
	"github.com/okian/etude/internal/domain/scoring"
	"github.com/okian/etude/pkg/logger"
	"github.com/okian/etude/pkg/metrics"
)

const defaultWorkerMultiplier = 2

// ErrShutdownTimeout is returned when workers do not drain before the deadline.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")

// Writer stores graded records.
type Writer interface {
	Put(ctx context.Context, rec model.GradedRecord) error
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue() <-chan model.Submission
}

// Worker processes submissions until its queue is drained or it is stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, the queue is
	// closed and drained, or Stop is called.
	Run(ctx context.Context)

	// Stop ends the loop without draining.
	Stop()
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	scorer scoring.Scorer
	writer Writer
	name   string
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, scorer scoring.Scorer, writer Writer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:  queue,
		scorer: scorer,
		writer: writer,
		name:   "worker",
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case sub, ok := <-items:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, sub); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Stop implements Worker.
func (w *InMemoryWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, sub model.Submission) error { //nolint:gocritic // hugeParam: passed by value from the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	rec := sub.Record
	res, err := w.scorer.Score(ctx, scoring.Input{RecordID: sub.Key(), Record: &rec})
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordError("worker", "scoring_error")
		return fmt.Errorf("score submission %s: %w", sub.SubmissionID, err)
	}

	graded := model.GradedRecord{
		RecordID:     res.RecordID,
		Title:        rec.Title,
		SubmissionID: sub.SubmissionID,
		Grade:        res.Grade,
		Metrics:      res.Metrics,
		SubmittedAt:  sub.TS,
		GradedAt:     w.now(),
	}
	if err := w.writer.Put(ctx, graded); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordError("worker", "store_error")
		return fmt.Errorf("store submission %s: %w", sub.SubmissionID, err)
	}

	w.logger.Debug(ctx, "graded submission",
		logger.String("submission_id", sub.SubmissionID),
		logger.String("record_id", graded.RecordID),
		logger.Bool("applicable", graded.Grade.Applicable),
		logger.Int("difficulty", int(graded.Grade.Level)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	closer  interface{ Close() error }
	logger  logger.Logger
}

// NewPool creates a worker pool. workerCount < 1 selects a CPU-based default.
func NewPool(workerCount int, queue Queue, scorer scoring.Scorer, writer Writer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	if c, ok := queue.(interface{ Close() error }); ok {
		p.closer = c
	}
	for i := range workerCount {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(queue, scorer, writer, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it. Workers still
// running when ctx expires are stopped and ErrShutdownTimeout is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			w.Stop()
		}
	}
	if timedOut {
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
	return nil
}
