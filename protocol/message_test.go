package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		terminal bool
	}{
		{"success", StatusSuccess, true},
		{"no content", StatusNoContent, true},
		{"partial content", StatusPartialContent, false},
		{"server error", 500, true},
		{"unauthorized", 401, true},
		{"unknown code", 999, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.terminal, Status{Code: test.code}.Terminal())
		})
	}
}

func TestStatus_OK(t *testing.T) {
	assert.True(t, Status{Code: StatusSuccess}.OK())
	assert.True(t, Status{Code: StatusNoContent}.OK())
	assert.False(t, Status{Code: StatusPartialContent}.OK())
	assert.False(t, Status{Code: 500}.OK())
}

func TestRequest_MarshalFieldNames(t *testing.T) {
	req := &Request{
		RequestID: "abc-123",
		Processor: "session",
		Op:        "eval",
		Args: Args{
			Gremlin:  "g.V().count()",
			Bindings: map[string]any{"x": 1},
			Accept:   "application/json",
			Language: "gremlin-groovy",
			Session:  "sess-1",
		},
	}

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "abc-123", decoded["requestId"])
	assert.Equal(t, "session", decoded["processor"])
	assert.Equal(t, "eval", decoded["op"])

	args, ok := decoded["args"].(map[string]any)
	require.True(t, ok, "args must be an object")
	assert.Equal(t, "g.V().count()", args["gremlin"])
	assert.Equal(t, "application/json", args["accept"])
	assert.Equal(t, "gremlin-groovy", args["language"])
	assert.Equal(t, "sess-1", args["session"])
	assert.Contains(t, args, "bindings")
}

func TestRequest_IsAuthentication(t *testing.T) {
	assert.True(t, (&Request{Op: OpAuthentication}).IsAuthentication())
	assert.True(t, (&Request{Op: OpAuthenticationLegacy}).IsAuthentication())
	assert.False(t, (&Request{Op: DefaultOp}).IsAuthentication())
}

func TestParseResponse(t *testing.T) {
	raw := []byte(`{
		"requestId": "req-1",
		"status": {"code": 206, "message": ""},
		"result": {"data": [1, "two", {"id": 3}]}
	}`)

	resp, err := ParseResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, StatusPartialContent, resp.Status.Code)
	require.Len(t, resp.Data(), 3)
	assert.JSONEq(t, `"two"`, string(resp.Data()[1]))
}

func TestParseResponse_NoResult(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"requestId": "req-2", "status": {"code": 204}}`))
	require.NoError(t, err)

	assert.Nil(t, resp.Result)
	assert.Nil(t, resp.Data())
	assert.True(t, resp.Status.OK())
}

func TestParseResponse_Malformed(t *testing.T) {
	_, err := ParseResponse([]byte(`{not json`))
	assert.Error(t, err)
}
