package requestfile

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

// Format is a request line encoding
type Format string

const (
	// FormatLiteral renders b'...' byte literals
	FormatLiteral Format = "literal"
	// FormatBase64 renders base64: lines
	FormatBase64 Format = "base64"
)

// ParseFormat converts a string to Format
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatLiteral, "":
		return FormatLiteral, nil
	case FormatBase64:
		return FormatBase64, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// Encode renders data as a single request line
func Encode(data []byte, format Format) string {
	if format == FormatBase64 {
		return EncodeBase64(data)
	}
	return EncodeLiteral(data)
}

// EncodeBase64 renders data as a base64: line
func EncodeBase64(data []byte) string {
	return Base64Prefix + base64.StdEncoding.EncodeToString(data)
}

// EncodeLiteral renders data as a b'...' literal that DecodeLine accepts.
// Double quotes are used instead when data contains ' but no ".
func EncodeLiteral(data []byte) string {
	quote := byte('\'')
	if bytes.IndexByte(data, '\'') >= 0 && bytes.IndexByte(data, '"') < 0 {
		quote = '"'
	}

	var sb strings.Builder
	sb.Grow(len(data) + 3)
	sb.WriteByte('b')
	sb.WriteByte(quote)
	for _, c := range data {
		switch {
		case c == '\\' || c == quote:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, `\x%02x`, c)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

// NormalizeCRLF turns bare LF line endings into CRLF
func NormalizeCRLF(data []byte) []byte {
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(normalized, []byte("\n"), []byte("\r\n"))
}
