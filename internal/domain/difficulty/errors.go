package difficulty

import "errors"

// Sentinel kinds for policy construction errors.
var (
	ErrUnknownInstrument = errors.New("unknown instrument category")
	ErrUnknownMetric     = errors.New("unknown difficulty metric")
	ErrInvalidWeight     = errors.New("invalid metric weight")
	ErrInvalidFloor      = errors.New("invalid density floor")
)
