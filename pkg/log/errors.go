package log

import "errors"

// Configuration errors. The logging entry points themselves never fail;
// these are returned by parsers and sink constructors and can be checked
// with errors.Is.
var (
	// ErrInvalidLevel is returned when a level name is not recognized.
	ErrInvalidLevel = errors.New("log: invalid level")

	// ErrUnknownBackend is returned when a sink backend name is not recognized.
	ErrUnknownBackend = errors.New("log: unknown backend")

	// ErrUnknownFormat is returned when an output format name is not recognized.
	ErrUnknownFormat = errors.New("log: unknown format")
)
