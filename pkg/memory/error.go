package memory

import "errors"

var (
	// ErrBackendUnavailable wraps any embedding or vector driver failure.
	ErrBackendUnavailable = errors.New("memory backend unavailable")

	// ErrStoreInconsistency means more than one subject Turn was found. It
	// is repaired by ReplaceSubject and only ever logged.
	ErrStoreInconsistency = errors.New("memory holds more than one subject")

	// ErrReservedKey is returned when a dialogue turn uses SubjectKey.
	ErrReservedKey = errors.New("key is reserved for the subject")
)
