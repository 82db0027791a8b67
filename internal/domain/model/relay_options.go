package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultIdleTimeout is the per-read idle timeout used by the file driven commands
	DefaultIdleTimeout = 20 * time.Second
	// ExampleIdleTimeout is the idle timeout used by the example command
	ExampleIdleTimeout = 4 * time.Second
	// DefaultChunkSize is the size of a single read from the peer
	DefaultChunkSize = 4096
	// DefaultWSPath is the request path used by the websocket transport
	DefaultWSPath = "/"
)

// TransportType defines how the byte stream to the endpoint is carried
type TransportType string

const (
	// TransportTCP carries the request over a plain TCP stream
	TransportTCP TransportType = "tcp"
	// TransportWebSocket carries the request as binary websocket frames
	TransportWebSocket TransportType = "websocket"
)

// ParseTransportType converts a string to TransportType
func ParseTransportType(s string) (TransportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tcp":
		return TransportTCP, nil
	case "websocket", "ws":
		return TransportWebSocket, nil
	default:
		return "", fmt.Errorf("unknown transport: %s", s)
	}
}

// TLSFingerprints lists the ClientHello presets accepted by TLSFingerprint
var TLSFingerprints = []string{"chrome", "edge", "firefox", "ios", "randomized", "safari"}

// ValidateFingerprint checks a fingerprint name; empty selects the Go TLS stack
func ValidateFingerprint(name string) error {
	if name == "" {
		return nil
	}
	for _, known := range TLSFingerprints {
		if strings.EqualFold(name, known) {
			return nil
		}
	}
	return fmt.Errorf("unknown TLS fingerprint %q (supported: %s)", name, strings.Join(TLSFingerprints, ", "))
}

// ResponseCap bounds the total time spent receiving a response.
// The zero value is NoCap.
type ResponseCap struct {
	limit time.Duration
}

// NoCap returns a ResponseCap that never expires
func NoCap() ResponseCap {
	return ResponseCap{}
}

// CappedAt returns a ResponseCap that expires d after the receive loop starts.
// A non-positive d is the same as NoCap.
func CappedAt(d time.Duration) ResponseCap {
	if d <= 0 {
		return NoCap()
	}
	return ResponseCap{limit: d}
}

// IsCapped reports whether the cap has a limit
func (c ResponseCap) IsCapped() bool {
	return c.limit > 0
}

// Limit returns the configured limit, zero when uncapped
func (c ResponseCap) Limit() time.Duration {
	return c.limit
}

// Deadline returns the absolute deadline for a loop started at start
func (c ResponseCap) Deadline(start time.Time) (time.Time, bool) {
	if !c.IsCapped() {
		return time.Time{}, false
	}
	return start.Add(c.limit), true
}

// String returns "none" or the limit
func (c ResponseCap) String() string {
	if !c.IsCapped() {
		return "none"
	}
	return c.limit.String()
}

// RelayOptions tunes a single Relay
type RelayOptions struct {
	// IdleTimeout bounds every read, every write and the TLS handshake
	IdleTimeout time.Duration
	// ConnectTimeout bounds the dial; zero keeps the platform default
	ConnectTimeout time.Duration
	// MaxDuration optionally bounds the whole receive loop
	MaxDuration ResponseCap
	// ChunkSize is the maximum size of a single read
	ChunkSize int
	// TLSVerify enables certificate and host name verification.
	// It is off by default so self-signed backends keep working.
	TLSVerify bool
	// TLSFingerprint selects a uTLS ClientHello; empty uses the Go TLS stack
	TLSFingerprint string
	// ProxyURL is an optional socks5:// or socks5h:// upstream
	ProxyURL string
	// Transport selects tcp or websocket
	Transport TransportType
	// WSPath is the request path for the websocket transport
	WSPath string
}

// NewRelayOptions returns options with the default values
func NewRelayOptions() RelayOptions {
	return RelayOptions{
		IdleTimeout: DefaultIdleTimeout,
		MaxDuration: NoCap(),
		ChunkSize:   DefaultChunkSize,
		Transport:   TransportTCP,
		WSPath:      DefaultWSPath,
	}
}

// Normalize fills zero values with defaults
func (o RelayOptions) Normalize() RelayOptions {
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Transport == "" {
		o.Transport = TransportTCP
	}
	if o.WSPath == "" {
		o.WSPath = DefaultWSPath
	}
	return o
}
