package eventstream

import "errors"

var (
	// ErrNilEvent indicates a nil memory event was provided to a publisher.
	ErrNilEvent = errors.New("nil memory event")

	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("publisher closed")
)
