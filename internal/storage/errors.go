package storage

import "errors"

var (
	// ErrInitialization means the structured store could not open its
	// connection; the session runs fallback-only.
	ErrInitialization = errors.New("structured store initialization failed")

	// ErrNotFound marks a structured-store lookup miss. Facade lookups
	// translate it into nil results, it never reaches command code.
	ErrNotFound = errors.New("not found")

	// ErrQueueClosed is returned for operations submitted after Close.
	ErrQueueClosed = errors.New("operation queue closed")
)
