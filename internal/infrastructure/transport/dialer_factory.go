package transport

import (
	"fmt"

	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
)

// NewDialer creates the dialer for the configured transport
func NewDialer(options model.RelayOptions, logger port.Logger) (port.Dialer, error) {
	options = options.Normalize()

	stream, err := NewStreamDialer(options, logger)
	if err != nil {
		return nil, err
	}

	switch options.Transport {
	case model.TransportTCP:
		if options.ProxyURL != "" {
			logger.Info("Using upstream proxy for all connections")
		}
		return stream, nil
	case model.TransportWebSocket:
		logger.Info("Using websocket transport with path %s", options.WSPath)
		return NewWebSocketDialer(stream, options, logger), nil
	default:
		return nil, fmt.Errorf("transport not supported: %s", options.Transport)
	}
}
