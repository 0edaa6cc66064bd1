package domain

import "context"

// KVStore is a durable key/value store. Reads and writes are synchronous.
type KVStore interface {
	// Get returns the stored value and whether the key exists
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// ResolveOptions selects the optional post-processing of a resolution
type ResolveOptions struct {
	// Detailed attaches the per-method outcomes and the resolved payload
	Detailed bool
	// Compare fetches the same path from the reference authority as well
	Compare bool
}

// PathResolver performs a single remote resolution
type PathResolver interface {
	Resolve(ctx context.Context, path string, opts ResolveOptions) (*ResolutionOutcome, error)
}

// ItemProvider supplies labels and hierarchy for listing items.
// Implementations may be backed by local data or remote calls.
type ItemProvider interface {
	// Label returns the display label; "" means show the raw ID
	Label(ctx context.Context, id ItemID) (string, error)

	// Children returns the IDs shown under id when it is expanded
	Children(ctx context.Context, id ItemID) ([]ItemID, error)

	// IsExpandable returns true if id has children that can be fetched
	IsExpandable(ctx context.Context, id ItemID) (bool, error)
}
