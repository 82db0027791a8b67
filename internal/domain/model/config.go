package model

import (
	"fmt"
	"strings"
	"time"
)

// LogLevel defines logging levels
type LogLevel string

const (
	// LogLevelDebug is the level for debug messages
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the level for informational messages
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the level for warning messages
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the level for error messages
	LogLevelError LogLevel = "error"
)

// Configuration keys, shared by the config file, RAWRELAY_* environment variables and `config set`
const (
	KeyTargetHost     = "target_host"
	KeyTargetPort     = "target_port"
	KeyUseTLS         = "use_tls"
	KeyTLSVerify      = "tls_verify"
	KeyTLSFingerprint = "tls_fingerprint"
	KeyReadTimeout    = "read_timeout"
	KeyConnectTimeout = "connect_timeout"
	KeyMaxDuration    = "max_duration"
	KeyChunkSize      = "chunk_size"
	KeyTransport      = "transport"
	KeyWSPath         = "ws_path"
	KeyProxyURL       = "proxy_url"
	KeyLogLevel       = "log_level"
	KeyLogFile        = "log_file"
)

// ConfigKeys lists every configuration key in display order
var ConfigKeys = []string{
	KeyTargetHost, KeyTargetPort, KeyUseTLS, KeyTLSVerify, KeyTLSFingerprint,
	KeyReadTimeout, KeyConnectTimeout, KeyMaxDuration, KeyChunkSize,
	KeyTransport, KeyWSPath, KeyProxyURL, KeyLogLevel, KeyLogFile,
}

// ParseLogLevel converts a string to LogLevel
func ParseLogLevel(s string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	switch level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return level, nil
	default:
		return "", fmt.Errorf("log level must be one of debug, info, warn, error: %s", s)
	}
}

// ParseTimeout parses a duration with a unit, such as 20s or 1m.
// A bare number is rejected rather than read as nanoseconds.
func ParseTimeout(s string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("expected a duration such as 20s or 1m: %s", s)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("duration out of range: %s", s)
	}
	return d, nil
}

// Config is the configuration structure for rawrelay
type Config struct {
	// TargetHost is the default host for the file command
	TargetHost string
	// TargetPort is the default port for the file command
	TargetPort int
	// UseTLS wraps connections to the default target in TLS
	UseTLS bool
	// TLSVerify enables certificate verification (off by default)
	TLSVerify bool
	// TLSFingerprint selects a uTLS ClientHello (chrome, firefox, safari, ios, edge, randomized)
	TLSFingerprint string
	// ReadTimeout is the idle timeout applied to each read
	ReadTimeout time.Duration
	// ConnectTimeout bounds the dial, zero for the platform default
	ConnectTimeout time.Duration
	// MaxDuration bounds the whole receive loop, zero for no cap
	MaxDuration time.Duration
	// ChunkSize is the size of a single read
	ChunkSize int
	// Transport is tcp or websocket
	Transport TransportType
	// WSPath is the websocket request path
	WSPath string
	// ProxyURL is an optional SOCKS5 upstream
	ProxyURL string
	// LogLevel is the logging level (debug, info, warn, error)
	LogLevel LogLevel
	// LogFile is the path to log file (empty for stderr only)
	LogFile string
}

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	return &Config{
		TargetHost:     "",
		TargetPort:     0,
		UseTLS:         false,
		TLSVerify:      false,
		TLSFingerprint: "",
		ReadTimeout:    DefaultIdleTimeout,
		ConnectTimeout: 0,
		MaxDuration:    0,
		ChunkSize:      DefaultChunkSize,
		Transport:      TransportTCP,
		WSPath:         DefaultWSPath,
		ProxyURL:       "",
		LogLevel:       LogLevelWarn,
		LogFile:        "",
	}
}

// Endpoint returns the default target as an Endpoint
func (c *Config) Endpoint() Endpoint {
	return NewEndpoint(c.TargetHost, c.TargetPort, c.UseTLS)
}

// HasTarget reports whether a default target is configured
func (c *Config) HasTarget() bool {
	return c.TargetHost != "" && c.TargetPort > 0
}

// RelayOptions builds relay options from the configuration
func (c *Config) RelayOptions() RelayOptions {
	return RelayOptions{
		IdleTimeout:    c.ReadTimeout,
		ConnectTimeout: c.ConnectTimeout,
		MaxDuration:    CappedAt(c.MaxDuration),
		ChunkSize:      c.ChunkSize,
		TLSVerify:      c.TLSVerify,
		TLSFingerprint: c.TLSFingerprint,
		ProxyURL:       c.ProxyURL,
		Transport:      c.Transport,
		WSPath:         c.WSPath,
	}.Normalize()
}
