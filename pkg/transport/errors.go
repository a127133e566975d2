package transport

import "errors"

// Normalized failure vocabulary shared by both transports. End-of-stream is
// io.EOF. Anything a transport reports that is neither EOF nor one of these
// sentinels travels to the caller unchanged, message intact.
var (
	// ErrRefused marks an actively refused stream connection attempt.
	// Stream transport only.
	ErrRefused = errors.New("connection refused")
	// ErrTimeout marks a timed-out stream operation. Stream transport only.
	ErrTimeout = errors.New("connection timed out")
)

// IsRefused reports whether err carries ErrRefused.
func IsRefused(err error) bool { return errors.Is(err, ErrRefused) }

// IsTimeout reports whether err carries ErrTimeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }
