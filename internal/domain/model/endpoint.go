package model

import (
	"fmt"
	"net"
	"strconv"
)

// Endpoint is the fixed remote target of a relay
type Endpoint struct {
	// Host is the target host name or IP, also used as the TLS server name
	Host string
	// Port is the target TCP port
	Port int
	// UseTLS wraps the stream in TLS after connecting
	UseTLS bool
}

// NewEndpoint creates a new Endpoint
func NewEndpoint(host string, port int, useTLS bool) Endpoint {
	return Endpoint{
		Host:   host,
		Port:   port,
		UseTLS: useTLS,
	}
}

// Address returns host:port, bracketing IPv6 literals
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// String returns a readable form of the endpoint
func (e Endpoint) String() string {
	if e.UseTLS {
		return fmt.Sprintf("%s (tls)", e.Address())
	}
	return e.Address()
}
