package requestfile

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Base64Prefix marks a base64 encoded request line
const Base64Prefix = "base64:"

var (
	// ErrUnknownFormat is returned for a line that is neither base64 nor a byte literal
	ErrUnknownFormat = errors.New("line is neither base64: nor a quoted byte literal")
	// ErrUnterminated is returned when a literal has no closing quote
	ErrUnterminated = errors.New("missing closing quote")
)

// LineError reports a request line that could not be decoded
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// DecodeLine decodes one request line.
//
// Two forms are accepted:
//
//	base64:R0VUIC8gSFRUUC8xLjENCg0K
//	b'GET / HTTP/1.1\r\nHost: example.com\r\n\r\n'
//
// A literal may use ', ", ''' or """ quotes with an optional b, r, rb or br prefix,
// and may be followed by a # comment.
// Recognized escapes are \\ \' \" \a \b \f \n \r \t \v, \xHH and octal \NNN.
// Nothing in the line is ever evaluated.
func DecodeLine(line string) ([]byte, error) {
	s := strings.TrimSpace(line)

	if strings.HasPrefix(s, Base64Prefix) {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s[len(Base64Prefix):]))
		if err != nil {
			return nil, fmt.Errorf("invalid base64: %w", err)
		}
		return data, nil
	}

	return decodeLiteral(s)
}

func decodeLiteral(s string) ([]byte, error) {
	body, raw := trimPrefix(s)

	var quote string
	switch {
	case strings.HasPrefix(body, `'''`), strings.HasPrefix(body, `"""`):
		quote = body[:3]
	case strings.HasPrefix(body, `'`), strings.HasPrefix(body, `"`):
		quote = body[:1]
	default:
		return nil, ErrUnknownFormat
	}
	body = body[len(quote):]

	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); {
		if strings.HasPrefix(body[i:], quote) {
			rest := strings.TrimSpace(body[i+len(quote):])
			if rest != "" && !strings.HasPrefix(rest, "#") {
				return nil, fmt.Errorf("unexpected text after closing quote: %q", rest)
			}
			return out, nil
		}

		c := body[i]
		if c != '\\' {
			out = append(out, c)
			i++
			continue
		}

		// A raw literal keeps the backslash; it only stops the next byte from closing the literal.
		if raw {
			if i+1 >= len(body) {
				return nil, errors.New("dangling backslash")
			}
			out = append(out, body[i], body[i+1])
			i += 2
			continue
		}

		b, width, err := decodeEscape(body[i:])
		if err != nil {
			return nil, err
		}
		out = append(out, b)
		i += width
	}

	return nil, ErrUnterminated
}

// trimPrefix strips an optional b, r, rb or br prefix in any case
func trimPrefix(s string) (string, bool) {
	for _, prefix := range []string{"rb", "br", "b", "r"} {
		if len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			return s[len(prefix):], strings.ContainsAny(s[:len(prefix)], "rR")
		}
	}
	return s, false
}

// decodeEscape decodes the escape sequence at the start of s, returning the byte and
// the number of input bytes consumed
func decodeEscape(s string) (byte, int, error) {
	if len(s) < 2 {
		return 0, 0, errors.New("dangling backslash")
	}

	switch e := s[1]; e {
	case '\\', '\'', '"':
		return e, 2, nil
	case 'a':
		return '\a', 2, nil
	case 'b':
		return '\b', 2, nil
	case 'f':
		return '\f', 2, nil
	case 'n':
		return '\n', 2, nil
	case 'r':
		return '\r', 2, nil
	case 't':
		return '\t', 2, nil
	case 'v':
		return '\v', 2, nil
	case 'x':
		if len(s) < 4 {
			return 0, 0, errors.New(`truncated \x escape`)
		}
		v, err := strconv.ParseUint(s[2:4], 16, 8)
		if err != nil {
			return 0, 0, fmt.Errorf(`invalid \x escape %q`, s[:4])
		}
		return byte(v), 4, nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		end := 2
		for end < len(s) && end < 4 && s[end] >= '0' && s[end] <= '7' {
			end++
		}
		v, err := strconv.ParseUint(s[1:end], 8, 16)
		if err != nil || v > 0xff {
			return 0, 0, fmt.Errorf("octal escape %q out of range", s[:end])
		}
		return byte(v), end, nil
	default:
		return 0, 0, fmt.Errorf(`unsupported escape \%c`, e)
	}
}
