// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/etude/internal/domain/record"
)

// Submission is a record sent for asynchronous grading.
// Fields mirror the OpenAPI schema for /submissions.
type Submission struct {
	SubmissionID string       // unique id for idempotency
	RecordID     string       // key the result is stored under
	Record       record.Score // extracted score features
	TS           time.Time    // time the submission was accepted
}

// Key returns RecordID, falling back to the record's own key.
func (s Submission) Key() string {
	if s.RecordID != "" {
		return s.RecordID
	}
	return s.Record.Key()
}
