package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackFrame_Layout(t *testing.T) {
	req := &Request{
		RequestID: "req-1",
		Op:        "eval",
		Args:      Args{Gremlin: "1+1", Bindings: map[string]any{}},
	}

	frame, err := PackFrame("application/json", req)
	require.NoError(t, err)

	// Byte-for-byte length prefixing: one byte of accept length, then the
	// accept string, then the escaped JSON payload.
	require.Equal(t, byte(len("application/json")), frame[0])
	assert.Equal(t, "application/json", string(frame[1:1+frame[0]]))

	var decoded Request
	require.NoError(t, json.Unmarshal(frame[1+frame[0]:], &decoded))
	assert.Equal(t, "req-1", decoded.RequestID)
	assert.Equal(t, "1+1", decoded.Args.Gremlin)
}

func TestPackFrame_RoundTrip(t *testing.T) {
	req := &Request{
		RequestID: "0f43bae0-0c2e-11ef-9f36-0242ac120002",
		Processor: "session",
		Op:        "eval",
		Args: Args{
			Gremlin:  `g.V().has("name", n)`,
			Bindings: map[string]any{"n": "marko"},
			Accept:   "application/json",
			Language: "gremlin-groovy",
			Session:  "sess-1",
		},
	}

	frame, err := PackFrame("application/json", req)
	require.NoError(t, err)

	accept, decoded, err := UnpackFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, "application/json", accept)
	if diff := cmp.Diff(req, decoded); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestPackFrame_EveryByteSingleChar(t *testing.T) {
	// Non-ASCII script text must be escaped so each character of the JSON
	// serialization occupies exactly one byte.
	req := &Request{
		RequestID: "req-2",
		Op:        "eval",
		Args:      Args{Gremlin: `g.addV("person").property("name", "Ålesund 東京 𝄞")`},
	}

	frame, err := PackFrame("application/json", req)
	require.NoError(t, err)

	payload := frame[1+frame[0]:]
	for i, b := range payload {
		assert.LessOrEqual(t, b, byte(0x7F), "payload byte %d is not ASCII", i)
	}

	// Escaping must survive a decode back to the original text.
	var decoded Request
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, req.Args.Gremlin, decoded.Args.Gremlin)
}

func TestPackFrame_AcceptTooLong(t *testing.T) {
	_, err := PackFrame(strings.Repeat("x", 256), &Request{RequestID: "req-3"})
	assert.Error(t, err)
}

func TestUnpackFrame_Truncated(t *testing.T) {
	_, _, err := UnpackFrame(nil)
	assert.Error(t, err)

	// Accept length prefix claims more bytes than the frame holds.
	_, _, err = UnpackFrame([]byte{10, 'a', 'b'})
	assert.Error(t, err)
}

func TestEscapeUnicode(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"ascii passthrough", `{"gremlin":"1+1"}`},
		{"latin supplement", `{"gremlin":"Ålesund"}`},
		{"cjk", `{"gremlin":"東京"}`},
		{"astral plane", `{"gremlin":"𝄞"}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			escaped := EscapeUnicode([]byte(test.input))
			for i := 0; i < len(escaped); i++ {
				require.LessOrEqual(t, escaped[i], byte(0x7F), "byte %d not ASCII", i)
			}

			var got map[string]string
			require.NoError(t, json.Unmarshal(escaped, &got))
			var want map[string]string
			require.NoError(t, json.Unmarshal([]byte(test.input), &want))
			assert.Equal(t, want, got)
		})
	}
}
