// Package repository stores graded records and ranks the hardest ones.
package repository

import (
	"context"

	"github.com/okian/etude/internal/domain/model"
)

// Entry is a ranked graded record.
type Entry struct {
	Rank   int
	Record model.GradedRecord
}

// Store provides read/write access to graded records and their ranking.
type Store interface {
	// Put stores the latest grade for a record, replacing any previous one.
	// A grade submitted before the stored one is dropped without error.
	Put(ctx context.Context, rec model.GradedRecord) error

	// Get returns the stored grade. Returns ErrNotFound if unknown.
	Get(ctx context.Context, recordID string) (model.GradedRecord, error)

	// Rank returns the record's position among applicable records, hardest
	// first. Returns ErrNotFound if unknown and ErrNotRanked if the record
	// is stored but not applicable.
	Rank(ctx context.Context, recordID string) (Entry, error)

	// TopN returns up to n ranked entries, hardest first.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) int

	// Ranked returns the number of applicable records in the ranking.
	Ranked(ctx context.Context) int
}
