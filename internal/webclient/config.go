package webclient

import "time"

// Backend names a registered transport implementation.
type Backend string

const (
	BackendNetHTTP Backend = "nethttp"
)

// Config selects and tunes the transport backend.
type Config struct {
	Backend Backend

	// Timeout bounds one page fetch end to end. Zero means DefaultTimeout.
	Timeout time.Duration

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// MaxBodyBytes caps how much of a response body is read. Zero means
	// DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

const (
	DefaultTimeout      = 15 * time.Second
	DefaultMaxBodyBytes = 10 << 20 // 10 MiB
	DefaultUserAgent    = "agentlens/0.1 (+https://github.com/agentlens/agentlens)"
)

// DefaultConfig returns the transport defaults used by the scanner.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendNetHTTP,
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}
