package port

import "github.com/haxorport/rawrelay/internal/domain/model"

// RequestSource loads raw requests.
// Malformed entries are reported in the returned slice of errors and do not stop the load.
type RequestSource interface {
	Load(path string) ([]model.RawRequest, []error, error)
	// Render formats request data for display in the same notation the source reads
	Render(data []byte) string
}
