package model

import (
	"time"

	"github.com/okian/etude/internal/domain/difficulty"
	"github.com/okian/etude/internal/domain/scoremetrics"
)

// GradedRecord is the stored outcome of grading one record.
type GradedRecord struct {
	RecordID     string
	Title        string
	SubmissionID string
	Grade        difficulty.Result
	Metrics      map[scoremetrics.Name]float64
	// SubmittedAt is when the graded submission was accepted. Stores keep
	// the grade of the latest submission, not the last one to finish.
	SubmittedAt time.Time
	GradedAt    time.Time
}

// Ratio returns the weighted achieved/max ratio used for ranking.
func (g GradedRecord) Ratio() float64 { //nolint:gocritic // hugeParam: value receiver keeps the type immutable
	return g.Grade.Breakdown.Summary.Ratio
}
