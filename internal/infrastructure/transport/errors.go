package transport

import (
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed exchange
type ErrorKind int

const (
	// DNSFailure means the host name could not be resolved
	DNSFailure ErrorKind = iota
	// ConnectFailure means the TCP connection could not be established
	ConnectFailure
	// ProxyFailure means the upstream proxy could not be used
	ProxyFailure
	// HandshakeFailure means the TLS or websocket handshake failed
	HandshakeFailure
	// SendFailure means the request could not be written completely
	SendFailure
)

func (k ErrorKind) String() string {
	switch k {
	case DNSFailure:
		return "DNS lookup failed"
	case ConnectFailure:
		return "connection failed"
	case ProxyFailure:
		return "proxy failed"
	case HandshakeFailure:
		return "handshake failed"
	case SendFailure:
		return "send failed"
	default:
		return fmt.Sprintf("unknown relay error: %d", int(k))
	}
}

// Error makes a kind usable as a sentinel with errors.Is
func (k ErrorKind) Error() string {
	return k.String()
}

// RelayError is returned by Forward when no response could be obtained
type RelayError struct {
	Kind    ErrorKind
	Address string
	Err     error
}

func (e *RelayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Address, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Address, e.Kind)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// Is matches a bare ErrorKind target
func (e *RelayError) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

func newRelayError(kind ErrorKind, address string, err error) *RelayError {
	return &RelayError{Kind: kind, Address: address, Err: err}
}

// classifyDialError separates DNS failures from other connect failures
func classifyDialError(address string, err error) *RelayError {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return newRelayError(DNSFailure, address, err)
	}
	return newRelayError(ConnectFailure, address, err)
}

// isTimeout reports whether err is a deadline expiry
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
