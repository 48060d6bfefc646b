// Package types contains wire types shared by the HTTP API and its client.
package types

import (
	"github.com/okian/etude/internal/domain/difficulty"
	"github.com/okian/etude/internal/domain/record"
	"github.com/okian/etude/internal/domain/scoremetrics"
)

// Entry is one row of the hardest-pieces ranking.
type Entry struct {
	Rank       int     `json:"rank"`
	RecordID   string  `json:"record_id"`
	Title      string  `json:"title,omitempty"`
	Instrument string  `json:"instrument"`
	Difficulty int     `json:"difficulty"`
	Label      string  `json:"label"`
	Ratio      float64 `json:"ratio"`
}

// ScoreView is the JSON form of a graded record. Difficulty, Label and
// Breakdown are omitted when the record is not applicable.
type ScoreView struct {
	RecordID   string                        `json:"record_id,omitempty" yaml:"record_id,omitempty"`
	Title      string                        `json:"title,omitempty" yaml:"title,omitempty"`
	Applicable bool                          `json:"applicable" yaml:"applicable"`
	Reason     string                        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Instrument string                        `json:"instrument" yaml:"instrument"`
	Difficulty int                           `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Label      string                        `json:"label,omitempty" yaml:"label,omitempty"`
	Breakdown  *difficulty.Breakdown         `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
	Omitted    []difficulty.Metric           `json:"omitted,omitempty" yaml:"omitted,omitempty"`
	Metrics    map[scoremetrics.Name]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// NewScoreView flattens a grade into its wire form.
func NewScoreView(recordID, title string, grade difficulty.Result, derived map[scoremetrics.Name]float64) ScoreView {
	v := ScoreView{
		RecordID:   recordID,
		Title:      title,
		Applicable: grade.Applicable,
		Reason:     string(grade.Reason),
		Instrument: string(grade.Instrument),
		Metrics:    derived,
	}
	if grade.Applicable {
		b := grade.Breakdown
		v.Difficulty = int(grade.Level)
		v.Label = grade.Label()
		v.Breakdown = &b
		v.Omitted = grade.Omitted
	}
	return v
}

// SubmissionRequest is the body of POST /submissions.
type SubmissionRequest struct {
	SubmissionID string       `json:"submission_id,omitempty"`
	RecordID     string       `json:"record_id,omitempty"`
	Record       record.Score `json:"record"`
}

// SubmissionResponse acknowledges a submission.
type SubmissionResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submission_id"`
	RecordID     string `json:"record_id"`
	Duplicate    bool   `json:"duplicate"`
}
