// Package client talks to a running grading server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/types"
	"github.com/okian/etude/pkg/logger"
)

const (
	defaultTimeout = 30 * time.Second
	// Upper bound on error bodies read into messages.
	maxErrorBody = 4 << 10
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithWorkers sets how many submissions run concurrently.
func WithWorkers(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger used for submission failures.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Client is a grading server client.
type Client struct {
	baseURL string
	http    *http.Client
	workers int
	logger  logger.Logger
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitStats counts submission outcomes.
type SubmitStats struct {
	Submitted int
	Accepted  int
	Duplicate int
	Failed    int
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

// Submit posts every record to /submissions using a pool of workers.
// Each record gets a fresh submission ID.
func (c *Client) Submit(ctx context.Context, records []record.Score) (SubmitStats, error) {
	var accepted, duplicate, failed, submitted int64

	jobs := make(chan *record.Score, c.workers*2)
	var wg sync.WaitGroup
	for range c.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				if ctx.Err() != nil {
					continue
				}
				atomic.AddInt64(&submitted, 1)
				dup, err := c.submitOne(ctx, rec)
				switch {
				case err != nil:
					atomic.AddInt64(&failed, 1)
					c.logFailure(ctx, rec, err)
				case dup:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&accepted, 1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range records {
			select {
			case <-ctx.Done():
				return
			case jobs <- &records[i]:
			}
		}
	}()
	wg.Wait()

	stats := SubmitStats{
		Submitted: int(submitted),
		Accepted:  int(accepted),
		Duplicate: int(duplicate),
		Failed:    int(failed),
	}
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("submission interrupted: %w", err)
	}
	return stats, nil
}

func (c *Client) submitOne(ctx context.Context, rec *record.Score) (bool, error) {
	body := types.SubmissionRequest{
		SubmissionID: uuid.NewString(),
		RecordID:     rec.Key(),
		Record:       *rec,
	}
	resp, err := c.do(ctx, http.MethodPost, "/submissions", body)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
		var ack types.SubmissionResponse
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			return false, fmt.Errorf("decode submission response: %w", err)
		}
		return ack.Duplicate, nil
	default:
		return false, statusError(resp)
	}
}

// Hardest returns the top limit hardest records.
func (c *Client) Hardest(ctx context.Context, limit int) ([]types.Entry, error) {
	resp, err := c.do(ctx, http.MethodGet, "/hardest?limit="+strconv.Itoa(limit), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var entries []types.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode hardest: %w", err)
	}
	return entries, nil
}

// Rank returns the rank entry of one record.
func (c *Client) Rank(ctx context.Context, recordID string) (types.Entry, error) {
	resp, err := c.do(ctx, http.MethodGet, "/rank/"+url.PathEscape(recordID), nil)
	if err != nil {
		return types.Entry{}, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return types.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, recordID)
	case http.StatusConflict:
		return types.Entry{}, fmt.Errorf("%w: %s", ErrNotRanked, recordID)
	default:
		return types.Entry{}, statusError(resp)
	}
	var e types.Entry
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return types.Entry{}, fmt.Errorf("decode rank: %w", err)
	}
	return e, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) logFailure(ctx context.Context, rec *record.Score, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(ctx, "submission failed",
		logger.String("record_id", rec.Key()),
		logger.Error(err),
	)
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
}
