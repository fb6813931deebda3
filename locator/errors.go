package locator

import (
	"errors"
	"fmt"
)

// Invariant violations. Returning wrong placement data is worse than failing
// loudly, so these are surfaced as errors instead of silently-empty results.
var (
	// ErrEmptyRing means a placement question was asked of a ring with no
	// tokens.
	ErrEmptyRing = errors.New("ring has no tokens")

	// ErrNoEndpoints means the placement policy produced an empty endpoint
	// list where ownership was expected.
	ErrNoEndpoints = errors.New("placement policy returned no endpoints")
)

// ConfigurationError reports invalid construction-time configuration: an
// unknown strategy name, an unrecognized option key, or a malformed
// replication factor. It is never retried; the caller must fix the config.
type ConfigurationError struct {
	Keyspace string
	Strategy string
	Message  string
}

func (e *ConfigurationError) Error() string { return e.Message }

func configErrorf(keyspace, strategy, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Keyspace: keyspace,
		Strategy: strategy,
		Message:  fmt.Sprintf(format, args...),
	}
}
