// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/etude/internal/adapters/repository"
	service "github.com/okian/etude/internal/app"
	"github.com/okian/etude/internal/domain/model"
	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/scoring"
	"github.com/okian/etude/internal/domain/types"
)

const (
	defaultMaxListLimit = 100
	maxBodyBytes        = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Submit queues a record for asynchronous grading.
	Submit(ctx context.Context, sub model.Submission) (service.SubmitResult, error)

	// Evaluate grades a record synchronously without storing it.
	Evaluate(ctx context.Context, rec *record.Score) (scoring.Result, error)

	// Read operations expose stored grades and the hardest-pieces ranking.
	Get(ctx context.Context, recordID string) (model.GradedRecord, error)
	Rank(ctx context.Context, recordID string) (repository.Entry, error)
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMaxListLimit caps the limit accepted by GET /hardest.
func WithMaxListLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxListLimit = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxListLimit int

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	evaluateHandler    *EvaluateHandler
	submissionsHandler *SubmissionsHandler
	scoresHandler      *ScoresHandler
	rankHandler        *RankHandler
	hardestHandler     *HardestHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{maxListLimit: defaultMaxListLimit}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.evaluateHandler = NewEvaluateHandler(deps)
	s.submissionsHandler = NewSubmissionsHandler(deps)
	s.scoresHandler = NewScoresHandler(deps)
	s.rankHandler = NewRankHandler(deps)
	s.hardestHandler = NewHardestHandler(deps, s.maxListLimit)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/evaluate", MetricsMiddleware(s.evaluateHandler.HandleEvaluate, "evaluate"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandlePostSubmission, "submissions"))
	mux.HandleFunc("/scores/", MetricsMiddleware(s.scoresHandler.HandleGetScore, "scores"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/hardest", MetricsMiddleware(s.hardestHandler.HandleGetHardest, "hardest"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeKindError maps err's kind to a status and code.
func writeKindError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrNotRanked):
		writeError(w, http.StatusConflict, "not_ranked", err)
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// classify translates upstream errors into API kinds.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return WrapKind(op, ErrNotFound, err)
	case errors.Is(err, repository.ErrNotRanked):
		return WrapKind(op, ErrNotRanked, err)
	case errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidSubmission),
		errors.Is(err, scoring.ErrNoRecord):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, service.ErrBackpressure):
		return WrapKind(op, ErrBackpressure, err)
	case errors.Is(err, service.ErrNotStarted):
		return WrapKind(op, ErrUnavailable, err)
	default:
		return Wrap(op, err)
	}
}

// pathID extracts the single path segment following prefix.
func pathID(r *http.Request, prefix string) (string, bool) {
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func toEntry(e repository.Entry) types.Entry { //nolint:gocritic // hugeParam: mapping helper
	g := e.Record.Grade
	return types.Entry{
		Rank:       e.Rank,
		RecordID:   e.Record.RecordID,
		Title:      e.Record.Title,
		Instrument: string(g.Instrument),
		Difficulty: int(g.Level),
		Label:      g.Label(),
		Ratio:      e.Record.Ratio(),
	}
}
