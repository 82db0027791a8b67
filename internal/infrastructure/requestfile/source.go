package requestfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
)

// maxLineSize bounds a single encoded request
const maxLineSize = 16 * 1024 * 1024

// Source reads requests from a line-oriented file
type Source struct{}

// NewSource creates a new Source
func NewSource() *Source {
	return &Source{}
}

// Load reads and decodes every request in the file at path.
// The returned error is set only when the file itself cannot be read.
func (s *Source) Load(path string) ([]model.RawRequest, []error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open request file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Render returns data as a byte literal
func (s *Source) Render(data []byte) string {
	return EncodeLiteral(data)
}

// Parse decodes requests from r, one per line.
// Blank lines and lines starting with # are skipped.
func Parse(r io.Reader) ([]model.RawRequest, []error, error) {
	var requests []model.RawRequest
	var lineErrs []error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		data, err := DecodeLine(text)
		if err != nil {
			lineErrs = append(lineErrs, &LineError{Line: line, Err: err})
			continue
		}
		requests = append(requests, model.RawRequest{Line: line, Data: data})
	}

	if err := scanner.Err(); err != nil {
		return requests, lineErrs, fmt.Errorf("failed to read requests after line %d: %w", line, err)
	}

	return requests, lineErrs, nil
}

// Ensure Source implements port.RequestSource
var _ port.RequestSource = (*Source)(nil)
