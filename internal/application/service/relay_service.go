package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
)

const (
	// Separator ends the trace of every request
	Separator = "##########################"
	// NoResponseMessage is printed when a request produced nothing
	NoResponseMessage = "No response received."
	// NoRequestsMessage is printed when a request file holds no usable lines
	NoRequestsMessage = "No requests to send. Exiting."
)

// RelayService forwards a batch of requests one after another and prints a trace
type RelayService struct {
	source    port.RequestSource
	forwarder port.Forwarder
	out       io.Writer
	logger    port.Logger
}

// NewRelayService creates a new RelayService instance
func NewRelayService(source port.RequestSource, forwarder port.Forwarder, out io.Writer, logger port.Logger) *RelayService {
	return &RelayService{
		source:    source,
		forwarder: forwarder,
		out:       out,
		logger:    logger,
	}
}

// LoadRequests reads a request file. Malformed lines are logged and skipped.
// A missing file prints an error line and yields no requests.
func (s *RelayService) LoadRequests(path string) ([]model.RawRequest, error) {
	requests, lineErrs, err := s.source.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(s.out, "Error: File '%s' does not exist.\n", path)
			return nil, nil
		}
		return nil, err
	}

	for _, lineErr := range lineErrs {
		s.logger.Error("Skipping malformed request in %s: %v", path, lineErr)
	}
	s.logger.Debug("Loaded %d requests from %s", len(requests), path)

	return requests, nil
}

// RunFile loads a request file and forwards its requests
func (s *RelayService) RunFile(ctx context.Context, path string) (model.BatchReport, error) {
	requests, err := s.LoadRequests(path)
	if err != nil {
		return model.BatchReport{}, err
	}
	if len(requests) == 0 {
		fmt.Fprintln(s.out, NoRequestsMessage)
		return model.BatchReport{}, nil
	}

	return s.Run(ctx, requests), nil
}

// Run forwards every request in order. A failed request never stops the batch;
// only cancellation of ctx does.
func (s *RelayService) Run(ctx context.Context, requests []model.RawRequest) model.BatchReport {
	var report model.BatchReport

	for i, req := range requests {
		if ctx.Err() != nil {
			s.logger.Warn("Batch interrupted after %d of %d requests", i, len(requests))
			break
		}

		fmt.Fprintf(s.out, "Sending request %d:\n", i+1)
		fmt.Fprintln(s.out, s.source.Render(req.Data))

		response, err := s.forwarder.Forward(ctx, req.Data)
		report.Attempted++
		if s.PrintResponse(response, err) {
			report.Responded++
		} else {
			report.NoResponse++
			if err != nil {
				s.logger.Debug("Request %d (line %d) failed: %v", i+1, req.Line, err)
			}
		}

		fmt.Fprintln(s.out, Separator)
	}

	s.logger.Info("Batch finished: %d attempted, %d responded, %d without response",
		report.Attempted, report.Responded, report.NoResponse)

	return report
}

// PrintResponse writes the response block and reports whether there was a response
func (s *RelayService) PrintResponse(response []byte, err error) bool {
	if err != nil || len(response) == 0 {
		fmt.Fprintln(s.out, NoResponseMessage)
		return false
	}

	fmt.Fprintln(s.out, "Response:")
	fmt.Fprintln(s.out, DecodeResponse(response))
	return true
}

// DecodeResponse renders response bytes as UTF-8 text, replacing invalid sequences
func DecodeResponse(response []byte) string {
	return strings.ToValidUTF8(string(response), "\uFFFD")
}
