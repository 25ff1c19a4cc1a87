package chunk

import "errors"

var (
	// ErrNoSegments indicates the splitter received no usable input.
	// This is an upstream bug, not a transient condition.
	ErrNoSegments = errors.New("no segments to chunk")

	// ErrInvalidWindow indicates a non-positive window length.
	ErrInvalidWindow = errors.New("window length must be greater than 0")

	// ErrInvalidOverlap indicates a negative overlap or one that is not
	// smaller than the window length.
	ErrInvalidOverlap = errors.New("overlap must be >= 0 and < window length")
)
