package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haxorport/rawrelay/internal/domain/model"
	"github.com/haxorport/rawrelay/internal/domain/port"
	"github.com/haxorport/rawrelay/internal/infrastructure/logger"
	"github.com/haxorport/rawrelay/internal/infrastructure/requestfile"
)

func testLogger() port.Logger {
	return logger.NewLogger(io.Discard, "debug")
}

// fakeForwarder answers from a table keyed by request payload
type fakeForwarder struct {
	responses map[string][]byte
	failures  map[string]error
	calls     []string
	onForward func()
}

func (f *fakeForwarder) Forward(ctx context.Context, request []byte) ([]byte, error) {
	f.calls = append(f.calls, string(request))
	if f.onForward != nil {
		f.onForward()
	}
	if err, ok := f.failures[string(request)]; ok {
		return nil, err
	}
	if resp, ok := f.responses[string(request)]; ok {
		return resp, nil
	}
	return []byte{}, nil
}

func requests(payloads ...string) []model.RawRequest {
	reqs := make([]model.RawRequest, len(payloads))
	for i, p := range payloads {
		reqs[i] = model.RawRequest{Line: i + 1, Data: []byte(p)}
	}
	return reqs
}

func TestRunAttemptsEveryRequestWhenOneFails(t *testing.T) {
	forwarder := &fakeForwarder{
		responses: map[string][]byte{
			"GET /a": []byte("HTTP/1.1 200 OK\r\n\r\na"),
			"GET /c": []byte("HTTP/1.1 200 OK\r\n\r\nc"),
		},
		failures: map[string]error{
			"GET /b": errors.New("connect: connection refused"),
		},
	}
	var out bytes.Buffer
	svc := NewRelayService(requestfile.NewSource(), forwarder, &out, testLogger())

	report := svc.Run(context.Background(), requests("GET /a", "GET /b", "GET /c"))

	assert.Equal(t, model.BatchReport{Attempted: 3, Responded: 2, NoResponse: 1}, report)
	assert.Equal(t, []string{"GET /a", "GET /b", "GET /c"}, forwarder.calls)
	assert.Equal(t, 1, strings.Count(out.String(), NoResponseMessage))
	assert.Equal(t, 3, strings.Count(out.String(), Separator))
}

func TestRunTraceFormat(t *testing.T) {
	forwarder := &fakeForwarder{
		responses: map[string][]byte{"PING\r\n": []byte("PONG\r\n")},
	}
	var out bytes.Buffer
	svc := NewRelayService(requestfile.NewSource(), forwarder, &out, testLogger())

	svc.Run(context.Background(), requests("PING\r\n", "SILENT"))

	want := "Sending request 1:\n" +
		"b'PING\\r\\n'\n" +
		"Response:\n" +
		"PONG\r\n\n" +
		Separator + "\n" +
		"Sending request 2:\n" +
		"b'SILENT'\n" +
		NoResponseMessage + "\n" +
		Separator + "\n"
	assert.Equal(t, want, out.String())
}

func TestRunTraceQuotesLikeByteRepr(t *testing.T) {
	var out bytes.Buffer
	svc := NewRelayService(requestfile.NewSource(), &fakeForwarder{}, &out, testLogger())

	svc.Run(context.Background(), requests(`{'k': 1}`, `{'k': "v"}`))

	assert.Contains(t, out.String(), "Sending request 1:\nb\"{'k': 1}\"\n")
	assert.Contains(t, out.String(), "Sending request 2:\nb'{\\'k\\': \"v\"}'\n")
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	forwarder := &fakeForwarder{onForward: cancel}
	svc := NewRelayService(requestfile.NewSource(), forwarder, io.Discard, testLogger())

	report := svc.Run(ctx, requests("one", "two", "three"))

	assert.Equal(t, 1, report.Attempted)
	assert.Len(t, forwarder.calls, 1)
}

func TestDecodeResponseReplacesInvalidUTF8(t *testing.T) {
	assert.Equal(t, "ok � done", DecodeResponse([]byte("ok \xff\xfe done")))
	assert.Equal(t, "café", DecodeResponse([]byte("café")))
}

func TestRunFileMissingFile(t *testing.T) {
	forwarder := &fakeForwarder{}
	var out bytes.Buffer
	svc := NewRelayService(requestfile.NewSource(), forwarder, &out, testLogger())

	path := filepath.Join(t.TempDir(), "nope.txt")
	report, err := svc.RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Zero(t, report.Attempted)
	assert.Empty(t, forwarder.calls)
	assert.Equal(t, "Error: File '"+path+"' does not exist.\n"+NoRequestsMessage+"\n", out.String())
}

func TestRunFileSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.txt")
	content := "b'GET /a'\n__import__('os')\nbase64:R0VUIC9i\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	forwarder := &fakeForwarder{}
	svc := NewRelayService(requestfile.NewSource(), forwarder, io.Discard, testLogger())

	report, err := svc.RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, []string{"GET /a", "GET /b"}, forwarder.calls)
}

func TestRunFileWithOnlyComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.txt")
	require.NoError(t, os.WriteFile(path, []byte("# nothing yet\n\n"), 0644))

	var out bytes.Buffer
	svc := NewRelayService(requestfile.NewSource(), &fakeForwarder{}, &out, testLogger())

	_, err := svc.RunFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, NoRequestsMessage+"\n", out.String())
}
