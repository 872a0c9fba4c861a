package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/linkurious/gremlin-go/errors"
)

// PackFrame serializes a request into the binary frame format:
//
//	[1 byte: length of the accept-type string][accept-type bytes][escaped JSON bytes]
//
// The JSON serialization is escaped so that every character fits in a single
// byte, which makes the byte layout independent of the message content.
func PackFrame(accept string, req *Request) ([]byte, error) {
	if len(accept) > 255 {
		return nil, errors.ErrAcceptTooLong
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "protocol", "PackFrame", "marshal request")
	}
	escaped := EscapeUnicode(raw)

	frame := make([]byte, 0, 1+len(accept)+len(escaped))
	frame = append(frame, byte(len(accept)))
	frame = append(frame, accept...)
	frame = append(frame, escaped...)
	return frame, nil
}

// UnpackFrame is the inverse of PackFrame. It recovers the accept type and
// the request from a binary frame. Used by test harnesses and mock servers;
// real servers decode frames on their side.
func UnpackFrame(frame []byte) (accept string, req *Request, err error) {
	if len(frame) < 1 {
		return "", nil, fmt.Errorf("frame too short: %d bytes", len(frame))
	}
	n := int(frame[0])
	if len(frame) < 1+n {
		return "", nil, fmt.Errorf("frame truncated: accept length %d, %d bytes remain", n, len(frame)-1)
	}
	accept = string(frame[1 : 1+n])

	var out Request
	if err := json.Unmarshal(frame[1+n:], &out); err != nil {
		return "", nil, errors.Wrap(err, "protocol", "UnpackFrame", "unmarshal request")
	}
	return accept, &out, nil
}

// EscapeUnicode rewrites UTF-8 encoded JSON so that every remaining character
// is ASCII: code points above 0x7F become \uXXXX escape sequences, with
// surrogate pairs for code points beyond the basic multilingual plane. JSON
// parsers decode the escapes back to the original text.
func EscapeUnicode(raw []byte) []byte {
	s := string(raw)
	if isASCII(s) {
		return raw
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, hi, lo)
			continue
		}
		fmt.Fprintf(&b, `\u%04x`, r)
	}
	return []byte(b.String())
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
