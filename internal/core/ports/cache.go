package ports

import "context"

// Cache is the key-value store used to accelerate user lookups.
// A logical miss is reported as ok=false with a nil error; a non-nil error
// means the transport failed and callers treat it as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value, replacing any entry or tombstone at key.
	Set(ctx context.Context, key, value string) error
	// Add stores value only when key holds neither an entry nor a tombstone.
	// stored is false when the key was occupied.
	Add(ctx context.Context, key, value string) (stored bool, err error)
	// Delete evicts key and leaves a short-lived tombstone in its place, so
	// an Add computed from a read that predates the eviction is refused.
	// Get reports a tombstone as a miss.
	Delete(ctx context.Context, key string) error
}
