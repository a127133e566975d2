package conduit

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a descriptor/context combination this layer
// cannot attempt. It is produced before any native I/O, is never retried,
// and is distinct from transport failures, which pass through unchanged.
type ConfigurationError struct {
	reason string
}

func (e *ConfigurationError) Error() string { return "conduit: " + e.reason }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{reason: fmt.Sprintf(format, args...)}
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

var (
	errNoStack            = &ConfigurationError{reason: "no stack bound"}
	errChannelUnavailable = &ConfigurationError{reason: "channel transport not available"}
)
