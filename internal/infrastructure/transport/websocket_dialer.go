package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
)

// WebSocketDialer carries the raw request over a websocket connection.
// Each request is sent as one binary message; every message received is
// appended to the response until the peer closes or the idle timeout expires.
type WebSocketDialer struct {
	stream  *StreamDialer
	options model.RelayOptions
	logger  port.Logger
}

// NewWebSocketDialer creates a new WebSocketDialer using stream for the underlying connection
func NewWebSocketDialer(stream *StreamDialer, options model.RelayOptions, logger port.Logger) *WebSocketDialer {
	return &WebSocketDialer{
		stream:  stream,
		options: options.Normalize(),
		logger:  logger,
	}
}

// URL returns the websocket URL for the endpoint
func (d *WebSocketDialer) URL(endpoint model.Endpoint) (string, error) {
	scheme := "ws"
	if endpoint.UseTLS {
		scheme = "wss"
	}

	path := d.options.WSPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u, err := url.Parse(scheme + "://" + endpoint.Address() + path)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Dial performs the websocket handshake and returns the connection as a byte stream
func (d *WebSocketDialer) Dial(ctx context.Context, endpoint model.Endpoint) (net.Conn, error) {
	wsURL, err := d.URL(endpoint)
	if err != nil {
		return nil, newRelayError(ConnectFailure, endpoint.Address(), err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: d.options.IdleTimeout,
		NetDialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return d.stream.dialRaw(ctx, addr)
		},
		NetDialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := d.stream.dialRaw(ctx, addr)
			if err != nil {
				return nil, err
			}
			tlsConn, err := d.stream.handshake(ctx, conn, endpoint.Host)
			if err != nil {
				conn.Close()
				return nil, newRelayError(HandshakeFailure, addr, err)
			}
			return tlsConn, nil
		},
	}

	d.logger.Debug("Opening websocket %s", wsURL)
	ws, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		var relayErr *RelayError
		if errors.As(err, &relayErr) {
			return nil, relayErr
		}
		return nil, newRelayError(HandshakeFailure, endpoint.Address(), err)
	}

	return newWebSocketConn(ws), nil
}

// webSocketConn adapts a websocket connection to net.Conn
type webSocketConn struct {
	*websocket.Conn
	pending []byte
}

func newWebSocketConn(ws *websocket.Conn) net.Conn {
	return &webSocketConn{Conn: ws}
}

// Read returns buffered message data, reading the next message when the buffer is empty.
// A close frame from the peer is reported as io.EOF.
func (c *webSocketConn) Read(b []byte) (int, error) {
	for len(c.pending) == 0 {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				return 0, io.EOF
			}
			return 0, err
		}
		c.pending = msg
	}

	n := copy(b, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Write sends b as a single binary message
func (c *webSocketConn) Write(b []byte) (int, error) {
	if err := c.Conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Close sends a best-effort close frame and closes the connection
func (c *webSocketConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.Conn.Close()
}

func (c *webSocketConn) SetDeadline(t time.Time) error {
	if err := c.Conn.SetReadDeadline(t); err != nil {
		return err
	}
	return c.Conn.SetWriteDeadline(t)
}

// Ensure WebSocketDialer implements port.Dialer
var _ port.Dialer = (*WebSocketDialer)(nil)
