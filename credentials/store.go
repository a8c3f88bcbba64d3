package credentials

import "context"

// Keys under which the session is persisted. They are always removed together.
const (
	KeyAccess  = "access"
	KeyRefresh = "refresh"
	KeyUser    = "user"
)

// AllKeys lists every key the session writes
var AllKeys = []string{KeyAccess, KeyRefresh, KeyUser}

// Store is an opaque string key-value store for session credentials.
// Implementations return errors.ErrKeyNotFound from Get for absent keys.
type Store interface {
	// Get returns the value stored under key
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// SetMany stores all values in one write
	SetMany(ctx context.Context, values map[string]string) error

	// Delete removes all keys in one write. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
