package client

import "errors"

// Sentinel errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrNotFound         = errors.New("record not found")
	ErrNotRanked        = errors.New("record not ranked")
)
