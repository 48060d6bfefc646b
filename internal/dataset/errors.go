package dataset

import "errors"

// Sentinel errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrNoInput           = errors.New("no input files matched")
	ErrMalformedRecord   = errors.New("malformed record")
)
