package watcher

import "errors"

var (
	// ErrEmptyArtifact halts the watcher when a changed artifact holds only
	// whitespace.
	ErrEmptyArtifact = errors.New("no code detected")

	// ErrPartiallyHandled marks a handler failure that came after the
	// artifact's code was taken in. Poll records such an artifact instead of
	// retrying it.
	ErrPartiallyHandled = errors.New("artifact handled with errors")

	ErrEmptyDir        = errors.New("watch directory is required")
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrInvalidMode     = errors.New("mode must be \"poll\" or \"notify\"")
	ErrInvalidPattern  = errors.New("invalid exclude pattern")
)
