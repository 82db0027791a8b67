package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/proxy"

	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
)

// clientHellos maps fingerprint names to uTLS ClientHello presets
var clientHellos = map[string]utls.ClientHelloID{
	"chrome":     utls.HelloChrome_Auto,
	"firefox":    utls.HelloFirefox_Auto,
	"safari":     utls.HelloSafari_Auto,
	"ios":        utls.HelloIOS_Auto,
	"edge":       utls.HelloEdge_Auto,
	"randomized": utls.HelloRandomized,
}

// StreamDialer opens TCP connections, directly or through a SOCKS5 proxy,
// and wraps them in TLS when the endpoint asks for it
type StreamDialer struct {
	options model.RelayOptions
	base    proxy.ContextDialer
	proxied bool
	logger  port.Logger
}

// NewStreamDialer creates a new StreamDialer
func NewStreamDialer(options model.RelayOptions, logger port.Logger) (*StreamDialer, error) {
	options = options.Normalize()

	if err := model.ValidateFingerprint(options.TLSFingerprint); err != nil {
		return nil, err
	}

	netDialer := &net.Dialer{Timeout: options.ConnectTimeout}
	d := &StreamDialer{
		options: options,
		base:    netDialer,
		logger:  logger,
	}

	if options.ProxyURL != "" {
		proxyURL, err := url.Parse(options.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		pd, err := proxy.FromURL(proxyURL, netDialer)
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy dialer: %w", err)
		}
		cd, ok := pd.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("proxy scheme %s does not support contexts", proxyURL.Scheme)
		}
		d.base = cd
		d.proxied = true
	}

	return d, nil
}

// Dial connects to the endpoint and performs the TLS handshake if required
func (d *StreamDialer) Dial(ctx context.Context, endpoint model.Endpoint) (net.Conn, error) {
	conn, err := d.dialRaw(ctx, endpoint.Address())
	if err != nil {
		return nil, err
	}

	if !endpoint.UseTLS {
		return conn, nil
	}

	tlsConn, err := d.handshake(ctx, conn, endpoint.Host)
	if err != nil {
		conn.Close()
		return nil, newRelayError(HandshakeFailure, endpoint.Address(), err)
	}
	return tlsConn, nil
}

func (d *StreamDialer) dialRaw(ctx context.Context, address string) (net.Conn, error) {
	conn, err := d.base.DialContext(ctx, "tcp", address)
	if err != nil {
		if d.proxied {
			return nil, newRelayError(ProxyFailure, address, err)
		}
		return nil, classifyDialError(address, err)
	}
	return conn, nil
}

// handshake runs a client handshake over conn, bounded by the idle timeout.
// Verification is skipped unless TLSVerify is set.
func (d *StreamDialer) handshake(ctx context.Context, conn net.Conn, serverName string) (net.Conn, error) {
	hctx, cancel := context.WithTimeout(ctx, d.options.IdleTimeout)
	defer cancel()

	if d.options.TLSFingerprint == "" {
		tlsConn := tls.Client(conn, &tls.Config{
			ServerName:         serverName,
			InsecureSkipVerify: !d.options.TLSVerify,
		})
		if err := tlsConn.HandshakeContext(hctx); err != nil {
			return nil, err
		}
		return tlsConn, nil
	}

	helloID := clientHellos[strings.ToLower(d.options.TLSFingerprint)]
	uconn := utls.UClient(conn, &utls.Config{
		ServerName:         serverName,
		InsecureSkipVerify: !d.options.TLSVerify,
	}, helloID)
	if err := uconn.HandshakeContext(hctx); err != nil {
		return nil, err
	}

	// Browser presets advertise h2; raw HTTP/1.x bytes will not be understood then.
	if proto := uconn.ConnectionState().NegotiatedProtocol; proto != "" && proto != "http/1.1" {
		d.logger.Warn("Server %s negotiated ALPN protocol %s with fingerprint %s", serverName, proto, d.options.TLSFingerprint)
	}
	return uconn, nil
}

// Ensure StreamDialer implements port.Dialer
var _ port.Dialer = (*StreamDialer)(nil)
