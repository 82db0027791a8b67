package port

import (
	"context"
	"net"

	"github.com/haxorport/rawrelay/internal/domain/model"
)

// Dialer opens a ready-to-use byte stream to an endpoint.
// Implementations perform the TLS handshake themselves when endpoint.UseTLS is set.
type Dialer interface {
	Dial(ctx context.Context, endpoint model.Endpoint) (net.Conn, error)
}
