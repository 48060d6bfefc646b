package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrNotRanked     = errors.New("record is not ranked")
	ErrInvalidLimit  = errors.New("invalid list limit")
	ErrInvalidRecord = errors.New("graded record has no id")
)
