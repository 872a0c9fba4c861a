// Package protocol defines the wire protocol spoken with a Gremlin server:
// request and response envelopes, status codes, and the binary frame format.
package protocol

import "encoding/json"

// Default values for request construction
const (
	// DefaultOp is the operation used when none is configured
	DefaultOp = "eval"
	// DefaultLanguage is the script language sent when none is configured
	DefaultLanguage = "gremlin-groovy"
	// DefaultAccept is the serialization mime type requested when none is configured
	DefaultAccept = "application/json"
	// SessionProcessor is the processor used for session-bound requests
	SessionProcessor = "session"
)

// Authentication operation names. Servers answering an authentication
// challenge do not always echo the original request identifier, so the
// dispatcher treats frames following these ops specially.
const (
	OpAuthentication = "authentication"
	// OpAuthenticationLegacy is accepted by older servers
	OpAuthenticationLegacy = "authenticate"
)

// Response status codes. Exact contract: 200 and 204 are terminal successes,
// 206 is non-terminal, anything else is a terminal error.
const (
	StatusSuccess        = 200
	StatusNoContent      = 204
	StatusPartialContent = 206
)

// Args is the argument bag of an outbound request.
type Args struct {
	Gremlin  string         `json:"gremlin"`
	Bindings map[string]any `json:"bindings"`
	Accept   string         `json:"accept,omitempty"`
	Language string         `json:"language,omitempty"`
	Binary   bool           `json:"binary,omitempty"`
	Session  string         `json:"session,omitempty"`
}

// Request is the outbound message envelope.
type Request struct {
	RequestID string `json:"requestId"`
	Processor string `json:"processor"`
	Op        string `json:"op"`
	Args      Args   `json:"args"`
}

// IsAuthentication reports whether the request carries an
// authentication-class operation.
func (r *Request) IsAuthentication() bool {
	return r.Op == OpAuthentication || r.Op == OpAuthenticationLegacy
}

// Status is the status block of an inbound frame.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Terminal reports whether this status ends the request: everything except
// partial content is terminal.
func (s Status) Terminal() bool {
	return s.Code != StatusPartialContent
}

// OK reports whether this status indicates success (with or without content).
func (s Status) OK() bool {
	return s.Code == StatusSuccess || s.Code == StatusNoContent
}

// Result holds the data batch of one inbound frame. A single frame may carry
// several logical values.
type Result struct {
	Data []json.RawMessage `json:"data"`
}

// Response is the inbound frame envelope.
type Response struct {
	RequestID string  `json:"requestId"`
	Status    Status  `json:"status"`
	Result    *Result `json:"result,omitempty"`
}

// Data returns the logical values carried by the frame, or nil when the frame
// has no result block.
func (r *Response) Data() []json.RawMessage {
	if r.Result == nil {
		return nil
	}
	return r.Result.Data
}

// ParseResponse decodes one inbound frame.
func ParseResponse(raw []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
