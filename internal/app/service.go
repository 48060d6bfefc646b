// Package service wires the grading pipeline and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	submissionqueue "github.com/okian/etude/internal/adapters/mq/queue"
	workerpool "github.com/okian/etude/internal/adapters/mq/worker"
	repository "github.com/okian/etude/internal/adapters/repository"
	"github.com/okian/etude/internal/domain/dedupe"
	"github.com/okian/etude/internal/domain/difficulty"
	"github.com/okian/etude/internal/domain/model"
	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/scoring"
	"github.com/okian/etude/pkg/logger"
	"github.com/okian/etude/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Sentinel kinds for service errors.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrBackpressure      = errors.New("submission queue unavailable")
)

// SubmitResult acknowledges a submission.
type SubmitResult struct {
	SubmissionID string
	RecordID     string
	Duplicate    bool
}

// Service owns the store, queue, deduper and worker pool.
type Service struct {
	mu sync.RWMutex

	store   *repository.TreapStore
	deduper dedupe.Deduper
	queue   *submissionqueue.InMemoryQueue
	scorer  *scoring.DifficultyScorer
	pool    *workerpool.Pool

	workerCount      int
	queueSize        int
	dedupeSize       int
	snapshotInterval time.Duration
	policy           *difficulty.Policy
	now              func() time.Time

	started   bool
	startedAt time.Time
	cancel    context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSnapshotInterval sets how often the ranking snapshot is rebuilt.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.snapshotInterval = interval
		}
	}
}

// WithPolicy sets the difficulty weight and floor policy.
func WithPolicy(p *difficulty.Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. Call Start before use.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        10_000,
		dedupeSize:       100_000,
		snapshotInterval: time.Second,
		policy:           difficulty.DefaultPolicy(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	// Background loops outlive the start request; Stop cancels them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.store = repository.NewTreapStore(runCtx, repository.WithSnapshotInterval(s.snapshotInterval))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = submissionqueue.NewInMemoryQueue(submissionqueue.WithCapacity(s.queueSize))
	s.scorer = scoring.NewDifficultyScorer(scoring.WithPolicy(s.policy))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.scorer, s.store, workerpool.WithClock(s.now))
	s.pool.Start(runCtx)

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "grading service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains queued submissions and releases background loops.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	_ = s.store.Close()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "grading service stopped")
}

// Submit queues a record for asynchronous grading. A missing submission ID
// is generated. Resubmitting a known ID is reported as a duplicate.
func (s *Service) Submit(ctx context.Context, sub model.Submission) (SubmitResult, error) { //nolint:gocritic // hugeParam: copied into the queue
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return SubmitResult{}, ErrNotStarted
	}
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}
	sub.RecordID = sub.Key()
	if sub.RecordID == "" {
		return SubmitResult{}, fmt.Errorf("%w: record_id, record.id or record.file_path is required", ErrInvalidSubmission)
	}
	res := SubmitResult{SubmissionID: sub.SubmissionID, RecordID: sub.RecordID}

	if s.deduper.SeenAndRecord(ctx, sub.SubmissionID) {
		metrics.RecordSubmissionDuplicate()
		res.Duplicate = true
		return res, nil
	}
	if sub.TS.IsZero() {
		sub.TS = s.now()
	}
	if err := s.queue.Enqueue(ctx, sub); err != nil {
		s.deduper.Unrecord(ctx, sub.SubmissionID)
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
	}

	metrics.RecordSubmissionAccepted()
	s.logger.Debug(ctx, "submission accepted",
		logger.String("submission_id", sub.SubmissionID),
		logger.String("record_id", sub.RecordID),
	)
	return res, nil
}

// Evaluate grades one record synchronously without storing it.
func (s *Service) Evaluate(ctx context.Context, rec *record.Score) (scoring.Result, error) {
	s.mu.RLock()
	scorer := s.scorer
	s.mu.RUnlock()

	if scorer == nil {
		scorer = scoring.NewDifficultyScorer(scoring.WithPolicy(s.policy))
	}
	if rec == nil {
		return scoring.Result{}, fmt.Errorf("%w: missing record", ErrInvalidSubmission)
	}
	return scorer.Score(ctx, scoring.Input{RecordID: rec.Key(), Record: rec})
}

// Get returns the stored grade for a record.
func (s *Service) Get(ctx context.Context, recordID string) (model.GradedRecord, error) {
	store, err := s.readStore()
	if err != nil {
		return model.GradedRecord{}, err
	}
	return store.Get(ctx, recordID)
}

// Rank returns a record's position among the hardest applicable records.
func (s *Service) Rank(ctx context.Context, recordID string) (repository.Entry, error) {
	store, err := s.readStore()
	if err != nil {
		return repository.Entry{}, err
	}
	return store.Rank(ctx, recordID)
}

// TopN returns the n hardest applicable records.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	store, err := s.readStore()
	if err != nil {
		return nil, err
	}
	return store.TopN(ctx, n)
}

func (s *Service) readStore() (*repository.TreapStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	total, ranked := s.store.Count(ctx), s.store.Ranked(ctx)
	stats["queueLength"] = s.queue.Len()
	stats["totalRecords"] = total
	stats["rankedRecords"] = ranked
	stats["seenSubmissions"] = s.deduper.Size()
	stats["uptimeSeconds"] = s.now().Sub(s.startedAt).Seconds()
	if snap := s.store.Snapshot(); snap != nil {
		stats["snapshotAt"] = snap.TakenAt.UTC().Format(time.RFC3339)
		if len(snap.Top) > 0 {
			stats["hardestRecord"] = snap.Top[0].Record.RecordID
		}
	}

	metrics.UpdateRepositoryRecords(total, ranked)
	metrics.UpdateWorkerCount(s.workerCount)
	return stats
}
