package requestfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLineByteLiterals(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"triple single", `b'''GET / HTTP/1.1\r\nHost: example.com\r\n\r\n'''`, "GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"},
		{"triple double", `b"""it's "quoted" """`, `it's "quoted" `},
		{"single with escaped quote", `b'it\'s'`, "it's"},
		{"no prefix", `"plain"`, "plain"},
		{"upper prefix", `B'x'`, "x"},
		{"hex and octal", `b'\x00\xff\0\101\7'`, "\x00\xff\x00A\x07"},
		{"control escapes", `b'\a\b\f\v\t\\'`, "\a\b\f\v\t\\"},
		{"empty", `b''`, ""},
		{"utf-8 passthrough", `b'caf` + "é" + `'`, "café"},
		{"surrounding space", "  b'x'  ", "x"},
		{"trailing comment", `b'x' # health check`, "x"},
		{"raw bytes", `rb'a\nb'`, `a\nb`},
		{"raw bytes reversed prefix", `BR"C:\tmp"`, `C:\tmp`},
		{"raw keeps escaped quote", `rb'it\'s'`, `it\'s`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestDecodeLineBase64(t *testing.T) {
	got, err := DecodeLine("base64: R0VUIC8gSFRUUC8xLjENCg0K")
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1\r\n\r\n", string(got))

	_, err = DecodeLine("base64:not*base64")
	assert.Error(t, err)
}

func TestDecodeLineRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"expression", `__import__('os').system('id')`},
		{"concatenation", `b'a' + b'b'`},
		{"unterminated", `b'abc`},
		{"unterminated triple", `b'''abc''`},
		{"unknown escape", `b'\q'`},
		{"unicode escape", `b'\u00e9'`},
		{"bad hex", `b'\xzz'`},
		{"truncated hex", `b'\x4'`},
		{"octal out of range", `b'\777'`},
		{"dangling backslash", `b'abc\`},
		{"raw unterminated", `rb'abc\'`},
		{"unknown prefix", `u'abc'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeLine(tt.line)
			assert.Error(t, err)
		})
	}

	_, err := DecodeLine("GET / HTTP/1.1")
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	_, err = DecodeLine(`b'abc`)
	assert.True(t, errors.Is(err, ErrUnterminated))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	data = append(data, []byte("POST / HTTP/1.1\r\nContent-Type: application/json\r\n\r\n{\"key\": 'value'}")...)

	for _, format := range []Format{FormatLiteral, FormatBase64} {
		line := Encode(data, format)
		assert.NotContains(t, line, "\n")

		got, err := DecodeLine(line)
		require.NoError(t, err, "format %s", format)
		assert.Equal(t, data, got, "format %s", format)
	}
}

func TestEncodeLiteralIsReadable(t *testing.T) {
	assert.Equal(t, `b'GET / HTTP/1.1\r\n\r\n'`, EncodeLiteral([]byte("GET / HTTP/1.1\r\n\r\n")))
	assert.Equal(t, `b"it's\\\x00"`, EncodeLiteral([]byte("it's\\\x00")))
	assert.Equal(t, `b'say "hi"'`, EncodeLiteral([]byte(`say "hi"`)))
	assert.Equal(t, `b'it\'s "hi"'`, EncodeLiteral([]byte(`it's "hi"`)))

	for _, data := range []string{"it's", `say "hi"`, `it's "hi"`} {
		got, err := DecodeLine(EncodeLiteral([]byte(data)))
		require.NoError(t, err)
		assert.Equal(t, data, string(got))
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("BASE64")
	require.NoError(t, err)
	assert.Equal(t, FormatBase64, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatLiteral, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestNormalizeCRLF(t *testing.T) {
	assert.Equal(t, "a\r\nb\r\n\r\n", string(NormalizeCRLF([]byte("a\nb\r\n\n"))))
}

func TestParseReportsBadLinesAndKeepsGoodOnes(t *testing.T) {
	input := strings.Join([]string{
		"# requests for the staging backend",
		`b'GET /one HTTP/1.1\r\n\r\n'`,
		"",
		`eval("boom")`,
		"base64:R0VUIC90d28gSFRUUC8xLjENCg0K",
		`b'\q'`,
		"",
	}, "\r\n")

	requests, lineErrs, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, requests, 2)
	assert.Equal(t, 2, requests[0].Line)
	assert.Equal(t, "GET /one HTTP/1.1\r\n\r\n", string(requests[0].Data))
	assert.Equal(t, 5, requests[1].Line)
	assert.Equal(t, "GET /two HTTP/1.1\r\n\r\n", string(requests[1].Data))

	require.Len(t, lineErrs, 2)
	var lineErr *LineError
	require.True(t, errors.As(lineErrs[0], &lineErr))
	assert.Equal(t, 4, lineErr.Line)
	assert.True(t, strings.HasPrefix(lineErrs[1].Error(), "line 6: "))
}

func TestSourceLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.txt")
	require.NoError(t, os.WriteFile(path, []byte("b'PING\\r\\n'\n"), 0644))

	requests, lineErrs, err := NewSource().Load(path)
	require.NoError(t, err)
	assert.Empty(t, lineErrs)
	require.Len(t, requests, 1)
	assert.Equal(t, "PING\r\n", string(requests[0].Data))

	_, _, err = NewSource().Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
