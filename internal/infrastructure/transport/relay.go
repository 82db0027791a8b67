package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
)

// Relay sends raw requests to a fixed endpoint, one fresh connection per request
type Relay struct {
	endpoint model.Endpoint
	options  model.RelayOptions
	dialer   port.Dialer
	logger   port.Logger
}

// NewRelay creates a new Relay instance
func NewRelay(endpoint model.Endpoint, dialer port.Dialer, options model.RelayOptions, logger port.Logger) *Relay {
	return &Relay{
		endpoint: endpoint,
		options:  options.Normalize(),
		dialer:   dialer,
		logger:   logger,
	}
}

// Endpoint returns the relay target
func (r *Relay) Endpoint() model.Endpoint {
	return r.endpoint
}

// SetDialer replaces the dialer used for new exchanges
func (r *Relay) SetDialer(dialer port.Dialer) {
	r.dialer = dialer
}

// Forward performs connect, send, receive-until-idle and close for one request.
// The returned slice is non-nil on success, even when the peer sent nothing.
// Connect, handshake and send failures are logged and returned as *RelayError.
func (r *Relay) Forward(ctx context.Context, request []byte) ([]byte, error) {
	log := r.logger.With("trace_id", uuid.NewString())
	start := time.Now()

	log.Debug("Connecting to %s", r.endpoint)
	conn, err := r.dialer.Dial(ctx, r.endpoint)
	if err != nil {
		log.Error("Error: %v", err)
		return nil, err
	}
	defer conn.Close()

	// Unblock any pending read or write when the caller gives up.
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	if err := r.send(conn, request); err != nil {
		relayErr := newRelayError(SendFailure, r.endpoint.Address(), err)
		log.Error("Error: %v", relayErr)
		return nil, relayErr
	}
	log.Debug("Sent %d bytes to %s", len(request), r.endpoint)

	response := r.receive(ctx, conn, log)
	log.Info("Received %d bytes from %s in %s", len(response), r.endpoint, time.Since(start).Round(time.Millisecond))

	return response, nil
}

// send writes the whole request, looping over short writes
func (r *Relay) send(conn net.Conn, request []byte) error {
	for written := 0; written < len(request); {
		if err := conn.SetWriteDeadline(time.Now().Add(r.options.IdleTimeout)); err != nil {
			return err
		}
		n, err := conn.Write(request[written:])
		written += n
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

// receive drains the connection until EOF, idle timeout, the response cap or a read error
func (r *Relay) receive(ctx context.Context, conn net.Conn, log port.Logger) []byte {
	response := make([]byte, 0, r.options.ChunkSize)
	buf := make([]byte, r.options.ChunkSize)
	capDeadline, capped := r.options.MaxDuration.Deadline(time.Now())

	for {
		deadline := time.Now().Add(r.options.IdleTimeout)
		if capped && capDeadline.Before(deadline) {
			deadline = capDeadline
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			log.Warn("Error while receiving data: %v", err)
			return response
		}

		n, err := conn.Read(buf)
		response = append(response, buf[:n]...)
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, io.EOF):
			log.Debug("Connection closed by peer")
		case ctx.Err() != nil:
			log.Warn("Receive interrupted: %v", ctx.Err())
		case isTimeout(err):
			if capped && !time.Now().Before(capDeadline) {
				log.Warn("Response cap of %s reached, returning %d bytes", r.options.MaxDuration, len(response))
			} else {
				log.Debug("No data for %s, assuming response is complete", r.options.IdleTimeout)
			}
		default:
			log.Warn("Error while receiving data: %v", err)
		}
		return response
	}
}

// Ensure Relay implements port.Forwarder
var _ port.Forwarder = (*Relay)(nil)
