package driver

import (
	"strings"

	"github.com/google/uuid"

	"github.com/linkurious/gremlin-go/protocol"
)

// RequestOptions override client-level request defaults for a single call.
// Field-by-field: an unset field falls back to the client configuration.
type RequestOptions struct {
	Op        string
	Processor string
	Accept    string
	Language  string
	// Binary requests binary framing for this call; nil falls back to the
	// client configuration.
	Binary *bool
	// Session overrides the session identifier. Session mode normally
	// injects the client's own identifier; set this only to join a
	// foreign session.
	Session string
}

// command pairs one outbound request with its result sink. Commands are owned
// by the correlation table from submission until terminal resolution or
// cancellation, and are never mutated after construction.
type command struct {
	id   string
	req  *protocol.Request
	sink *resultSink
}

// newCommand builds a command from a script, bindings and per-call overrides,
// applying client-level defaults and session-mode injection.
func (c *Client) newCommand(script string, bindings map[string]any, opts *RequestOptions) *command {
	if opts == nil {
		opts = &RequestOptions{}
	}
	if bindings == nil {
		bindings = map[string]any{}
	}

	id := newRequestID()

	args := protocol.Args{
		Gremlin:  script,
		Bindings: bindings,
		Accept:   firstNonEmpty(opts.Accept, c.cfg.Accept),
		Language: firstNonEmpty(opts.Language, c.cfg.Language),
	}
	if opts.Binary != nil {
		args.Binary = *opts.Binary
	} else {
		args.Binary = c.cfg.Binary
	}

	op := firstNonEmpty(opts.Op, c.cfg.Op, protocol.DefaultOp)
	processor := firstNonEmpty(opts.Processor, c.cfg.Processor)

	if c.session != "" {
		args.Session = c.session
		if processor == "" {
			processor = protocol.SessionProcessor
		}
	}
	if opts.Session != "" {
		args.Session = opts.Session
	}

	return &command{
		id: id,
		req: &protocol.Request{
			RequestID: id,
			Processor: processor,
			Op:        op,
			Args:      args,
		},
		sink: newResultSink(),
	}
}

// newRequestID generates a fresh correlation token. Time-ordered identifiers
// help log correlation; uniqueness is the actual requirement, so generation
// falls back to random identifiers when the clock sequence is unavailable.
func newRequestID() string {
	if id, err := uuid.NewUUID(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

// ExtractBody returns the body of a function-literal script: the text between
// the first opening brace and the last closing brace of its textual
// representation. It lets callers author a script as a closure and submit
// only its body:
//
//	script := driver.ExtractBody(`function() { g.V().count() }`)
//
// Input without an outer brace pair is returned unchanged.
func ExtractBody(fn string) string {
	start := strings.Index(fn, "{")
	end := strings.LastIndex(fn, "}")
	if start < 0 || end <= start {
		return fn
	}
	return fn[start+1 : end]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
