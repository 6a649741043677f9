package store

import "context"

// Driver is the durable key-value contract the store runs on.
// Values are opaque strings (JSON-serialized collections); a missing key is
// reported through the ok flag, not an error. Implementations must be safe
// for concurrent use within a single process. Cross-process writers are not
// coordinated: the full-collection rewrite is the atomicity unit and the
// last write wins.
type Driver interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
