package port

import "context"

// Forwarder performs one request/response exchange.
// A nil error with an empty slice means the peer sent nothing; a non-nil error means no response.
type Forwarder interface {
	Forward(ctx context.Context, request []byte) ([]byte, error)
}
