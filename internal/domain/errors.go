package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the resolution server is unreachable
	ErrServerOffline = errors.New("resolution server is unreachable")

	// ErrNotFound indicates the server has no resource for the requested path
	ErrNotFound = errors.New("path not found")

	// ErrMalformedEnvelope indicates a persisted cache record could not be decoded
	ErrMalformedEnvelope = errors.New("malformed cache envelope")

	// ErrCacheKeyInUse indicates another live cache instance owns the key
	ErrCacheKeyInUse = errors.New("cache key already in use")

	// ErrStale indicates an async result was discarded because the state it
	// was computed for has been superseded
	ErrStale = errors.New("result superseded")

	// ErrQueueClosed indicates a push to a queue that has been shut down
	ErrQueueClosed = errors.New("queue closed")
)
