package repository

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/etude/internal/domain/model"
	"github.com/okian/etude/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: ratio DESC, then difficulty DESC, then record id ASC.
// "less" means ranks earlier, so in-order traversal yields the ranking
// from hardest to easiest. Subtree sizes give O(log n) rank lookups.

// ratioScale converts ratios to fixed point so equal ratios compare equal.
const ratioScale = 1_000_000_000_000

type ratioFP int64

func toFixedPoint(x float64) ratioFP {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return ratioFP(math.Round(x * ratioScale))
}

type key struct {
	ratio ratioFP
	level int
	id    string
}

func keyOf(rec *model.GradedRecord) key {
	return key{ratio: toFixedPoint(rec.Ratio()), level: int(rec.Grade.Level), id: rec.RecordID}
}

// less reports whether a ranks before b.
func less(a, b key) bool {
	if a.ratio != b.ratio {
		return a.ratio > b.ratio
	}
	if a.level != b.level {
		return a.level > b.level
	}
	return a.id < b.id
}

// Snapshot is an immutable view of the ranking, rebuilt periodically.
type Snapshot struct {
	TakenAt time.Time
	Total   int
	Ranked  int
	// Top holds the hardest entries, up to the configured cache size.
	Top []Entry
}

type node struct {
	key   key
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, k key, prio uint64) *node {
	if n == nil {
		return &node{key: k, prio: prio, size: 1}
	}
	if less(k, n.key) {
		n.left = insert(n.left, k, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, k key) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.key == k:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	case less(k, n.key):
		n.left = deleteNode(n.left, k)
	default:
		n.right = deleteNode(n.right, k)
	}
	fix(n)
	return n
}

// position returns the 1-based in-order position of k, or 0 if absent.
func position(n *node, k key) int {
	before := 0
	for n != nil {
		switch {
		case n.key == k:
			return before + nsize(n.left) + 1
		case less(k, n.key):
			n = n.left
		default:
			before += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, byID map[string]model.GradedRecord, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, byID, out)
	if len(*out) < limit {
		if rec, ok := byID[n.key.id]; ok {
			*out = append(*out, Entry{Rank: len(*out) + 1, Record: rec})
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, byID, out)
	}
}

// TreapStore implements Store.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]model.GradedRecord

	snapshotInterval      time.Duration
	metricsUpdateInterval time.Duration
	topCacheSize          int

	snapshot atomic.Pointer[Snapshot]

	wg        sync.WaitGroup
	stopChan  chan struct{}
	closeOnce sync.Once
}

// NewTreapStore constructs a treap store and starts its background loops,
// which run until ctx is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		snapshotInterval:      time.Second,
		metricsUpdateInterval: 5 * time.Second,
		topCacheSize:          100,
		byID:                  make(map[string]model.GradedRecord),
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.snapshot.Store(&Snapshot{TakenAt: time.Now()})
	s.every(ctx, s.snapshotInterval, s.publishSnapshot)
	s.every(ctx, s.metricsUpdateInterval, s.updateMetrics)
	return s
}

func (s *TreapStore) every(ctx context.Context, interval time.Duration, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Close stops the background loops.
func (s *TreapStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Put implements Store in O(log n) expected time.
func (s *TreapStore) Put(ctx context.Context, rec model.GradedRecord) error { //nolint:gocritic // hugeParam: stored by value
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if rec.RecordID == "" {
		metrics.RecordError("repository", "invalid_record")
		return ErrInvalidRecord
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[rec.RecordID]
	if ok && rec.SubmittedAt.Before(old.SubmittedAt) {
		metrics.RecordError("repository", "stale_record")
		return nil
	}
	if ok && old.Grade.Applicable {
		s.root = deleteNode(s.root, keyOf(&old))
	}
	s.byID[rec.RecordID] = rec
	if rec.Grade.Applicable {
		s.root = insert(s.root, keyOf(&rec), rand.Uint64()) //nolint:gosec // treap priorities need no crypto
	}
	return nil
}

// Get implements Store.
func (s *TreapStore) Get(_ context.Context, recordID string) (model.GradedRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[recordID]
	if !ok {
		metrics.RecordError("repository", "not_found")
		return model.GradedRecord{}, ErrNotFound
	}
	return rec, nil
}

// Rank implements Store in O(log n) expected time.
func (s *TreapStore) Rank(_ context.Context, recordID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[recordID]
	if !ok {
		metrics.RecordError("repository", "not_found")
		return Entry{}, ErrNotFound
	}
	if !rec.Grade.Applicable {
		return Entry{}, ErrNotRanked
	}
	return Entry{Rank: position(s.root, keyOf(&rec)), Record: rec}, nil
}

// TopN implements Store.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordError("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, nsize(s.root)))
	collectTopN(s.root, n, s.byID, &out)
	return out, nil
}

// Count implements Store.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Ranked implements Store.
func (s *TreapStore) Ranked(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nsize(s.root)
}

// Snapshot returns the most recently published snapshot.
func (s *TreapStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

func (s *TreapStore) publishSnapshot() {
	start := time.Now()

	s.mu.RLock()
	top := make([]Entry, 0, min(s.topCacheSize, nsize(s.root)))
	collectTopN(s.root, s.topCacheSize, s.byID, &top)
	snap := &Snapshot{
		TakenAt: start,
		Total:   len(s.byID),
		Ranked:  nsize(s.root),
		Top:     top,
	}
	s.mu.RUnlock()

	s.snapshot.Store(snap)
	metrics.RecordRepositorySnapshot(float64(time.Since(start).Microseconds())/1000, float64(start.Unix()))
}

func (s *TreapStore) updateMetrics() {
	s.mu.RLock()
	total, ranked := len(s.byID), nsize(s.root)
	s.mu.RUnlock()
	metrics.UpdateRepositoryRecords(total, ranked)
}
