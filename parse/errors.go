package parse

import "errors"

var (
	// ErrUnsupportedType indicates a file extension no parser is registered for.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrNoContent indicates the file parsed cleanly but yielded no extractable text.
	ErrNoContent = errors.New("no extractable text content")

	// ErrInvalidDocument indicates the file is corrupt or not a valid document.
	ErrInvalidDocument = errors.New("invalid document file")
)
