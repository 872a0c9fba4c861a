package driver

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/linkurious/gremlin-go/config"
	"github.com/linkurious/gremlin-go/errors"
	"github.com/linkurious/gremlin-go/metric"
	"github.com/linkurious/gremlin-go/pkg/tlsutil"
	"github.com/linkurious/gremlin-go/protocol"
	"github.com/linkurious/gremlin-go/transport"
)

// connState tracks the connection lifecycle: a client starts disconnected,
// becomes connected exactly once, and ends closed. No reconnection is
// attempted; a closed client fails its pending work and queues anything
// submitted afterwards without ever sending it.
type connState int

const (
	stateDisconnected connState = iota
	stateConnected
	stateClosed
)

// String returns the string representation of connState
func (s connState) String() string {
	switch s {
	case stateDisconnected:
		return "disconnected"
	case stateConnected:
		return "connected"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client executes Gremlin scripts against a server over one persistent
// connection. Commands submitted before Connect are queued and flushed in
// FIFO order once the connection opens. Results arrive asynchronously through
// the callback or channel returned by the submitting call.
//
// All transport events for one client are delivered from a single goroutine,
// so the correlation table and pending queue have a single writer for the
// dispatch path; the mutex serializes application submissions against it.
type Client struct {
	cfg       *config.Config
	transport transport.Transport
	logger    *slog.Logger
	metrics   *clientMetrics

	// session identifier, generated once per instance in session mode
	session string

	mu         sync.Mutex
	state      connState
	pending    map[string]*command // correlation table: requestId -> command
	queue      []*command          // commands awaiting transmission, FIFO
	lastAuthID string              // auth token override slot, consumed on next frame

	opened    chan struct{}
	openOnce  sync.Once
	closed    chan struct{}
	closeOnce sync.Once
}

// Option is a functional option for configuring the Client
type Option func(*Client) error

// WithLogger sets a custom logger for the client
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithTransport injects a custom transport. Primarily used by tests and by
// callers with special socket requirements; the default is a WebSocket.
func WithTransport(t transport.Transport) Option {
	return func(c *Client) error {
		c.transport = t
		return nil
	}
}

// WithMetricsRegistry enables Prometheus metrics on the given registry
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(c *Client) error {
		c.metrics = newClientMetrics(registry)
		return nil
	}
}

// New creates a client for the configured server. The connection is not
// established until Connect is called; commands may be submitted immediately
// and are queued until then.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "Client", "New", "validate config")
	}

	c := &Client{
		cfg:     cfg,
		logger:  slog.Default().With("component", "client"),
		pending: make(map[string]*command),
		opened:  make(chan struct{}),
		closed:  make(chan struct{}),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "Client", "New", "apply option")
		}
	}

	if c.transport == nil {
		c.transport = transport.NewWebSocket(
			transport.WithHandshakeTimeout(cfg.HandshakeTimeout.Std()),
			transport.WithLogger(c.logger),
		)
	}

	if cfg.Session {
		c.session = newRequestID()
		c.logger.Debug("session mode enabled", "session", c.session)
	}

	return c, nil
}

// URL returns the WebSocket endpoint the client connects to.
func (c *Client) URL() string {
	return c.cfg.URL()
}

// Session returns the session identifier, or "" when session mode is off.
func (c *Client) Session() string {
	return c.session
}

// Connect opens the connection and flushes any queued commands. It returns
// once the connection is established or the context ends.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case stateConnected:
		c.mu.Unlock()
		return errors.ErrAlreadyConnected
	case stateClosed:
		c.mu.Unlock()
		return errors.ErrClosed
	}
	c.mu.Unlock()

	var tlsConfig *tls.Config
	if c.cfg.SSL {
		cfg, err := tlsutil.LoadClientTLSConfig(c.cfg.TLSClientConfig())
		if err != nil {
			return errors.Wrap(err, "Client", "Connect", "load TLS config")
		}
		tlsConfig = cfg
	}

	if err := c.transport.Open(ctx, c.cfg.URL(), tlsConfig, c); err != nil {
		return errors.Wrap(err, "Client", "Connect", "open transport")
	}

	select {
	case <-c.opened:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears down the connection. Every pending command fails with the same
// close detail; Close returns after all of them have been terminated.
// Commands submitted afterwards are queued but never sent.
func (c *Client) Close() error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case stateClosed:
		return nil
	case stateDisconnected:
		// Never connected: there is no transport to close, but queued work
		// still has to be failed.
		c.OnClose(transport.CloseDetail{})
		return nil
	}

	err := c.transport.Close()
	<-c.closed
	return err
}

// Exec submits a script and collects the complete result. The callback is
// invoked exactly once with either the ordered response frames or an error,
// never both. Exec returns immediately with the request identifier.
func (c *Client) Exec(script string, bindings map[string]any, opts *RequestOptions, cb func(error, []*protocol.Response)) string {
	cmd := c.newCommand(script, bindings, opts)
	collect(cmd.sink, cb)
	c.submit(cmd)
	return cmd.id
}

// Stream submits a script and returns an incremental value sequence: one
// event per logical value, flattened across response frames, in order. The
// channel closes after the terminal event.
func (c *Client) Stream(script string, bindings map[string]any, opts *RequestOptions) <-chan Result {
	cmd := c.newCommand(script, bindings, opts)
	out := stream(cmd.sink)
	c.submit(cmd)
	return out
}

// MessageStream submits a script and returns the raw frame sequence with no
// flattening, for callers that need per-frame status and metadata.
func (c *Client) MessageStream(script string, bindings map[string]any, opts *RequestOptions) <-chan Frame {
	cmd := c.newCommand(script, bindings, opts)
	out := rawStream(cmd.sink)
	c.submit(cmd)
	return out
}

// submit registers a command in the correlation table and either transmits it
// or queues it, depending on connection state. Registration happens before
// transmission so a response can never race its own bookkeeping.
func (c *Client) submit(cmd *command) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending[cmd.id] = cmd
	if c.metrics != nil {
		c.metrics.commandsSubmitted.Inc()
		c.metrics.pendingCommands.Inc()
	}

	if c.state != stateConnected {
		c.queue = append(c.queue, cmd)
		if c.metrics != nil {
			c.metrics.commandsQueued.Inc()
		}
		c.logger.Debug("command queued", "requestId", cmd.id, "state", c.state.String())
		return
	}

	c.send(cmd)
}

// send transmits one command. Caller holds c.mu.
func (c *Client) send(cmd *command) {
	data, binary, err := encodeRequest(cmd.req)
	if err == nil {
		err = c.transport.Send(data, binary)
	}
	if err != nil {
		delete(c.pending, cmd.id)
		if c.metrics != nil {
			c.metrics.pendingCommands.Dec()
		}
		cmd.sink.terminate(errors.Wrap(err, "Client", "send", "transmit request"))
		return
	}

	if cmd.req.IsAuthentication() {
		// Servers answering an authentication challenge do not echo the
		// request identifier; the next frame resolves to this command.
		c.lastAuthID = cmd.id
	}
	c.logger.Debug("command sent", "requestId", cmd.id, "op", cmd.req.Op)
}

// encodeRequest serializes a request as JSON text or as a binary frame when
// the argument bag asks for binary framing.
func encodeRequest(req *protocol.Request) (data []byte, binary bool, err error) {
	if req.Args.Binary {
		data, err = protocol.PackFrame(req.Args.Accept, req)
		return data, true, err
	}
	data, err = json.Marshal(req)
	return data, false, err
}

// OnOpen implements transport.Handler. Queued commands are flushed in strict
// FIFO arrival order before the connect signal fires; no partial flush is
// observable.
func (c *Client) OnOpen() {
	c.mu.Lock()
	c.state = stateConnected
	flushed := len(c.queue)
	for _, cmd := range c.queue {
		c.send(cmd)
	}
	c.queue = nil
	if c.metrics != nil {
		c.metrics.connectionStatus.Set(1)
	}
	c.openOnce.Do(func() { close(c.opened) })
	c.mu.Unlock()

	c.logger.Debug("connected", "url", c.cfg.URL(), "flushed", flushed)
}

// OnMessage implements transport.Handler: the response dispatcher. Frames for
// unknown correlation tokens are dropped quietly; late arrivals after a close
// are expected, not an error.
func (c *Client) OnMessage(data []byte) {
	resp, err := protocol.ParseResponse(data)
	if err != nil {
		c.logger.Error("discarding malformed frame", "error", err)
		if c.metrics != nil {
			c.metrics.framesDiscarded.Inc()
		}
		return
	}

	c.mu.Lock()
	token := resp.RequestID
	if c.lastAuthID != "" {
		token = c.lastAuthID
		c.lastAuthID = ""
	}

	cmd, ok := c.pending[token]
	if !ok {
		c.mu.Unlock()
		c.logger.Debug("frame for unknown request", "requestId", token, "status", resp.Status.Code)
		if c.metrics != nil {
			c.metrics.framesDiscarded.Inc()
		}
		return
	}

	terminal := resp.Status.Terminal()
	if terminal {
		delete(c.pending, token)
		if c.metrics != nil {
			c.metrics.pendingCommands.Dec()
		}
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.framesReceived.WithLabelValues(statusClass(resp.Status.Code)).Inc()
	}

	switch resp.Status.Code {
	case protocol.StatusSuccess:
		cmd.sink.push(resp)
		cmd.sink.terminate(nil)
	case protocol.StatusNoContent:
		cmd.sink.terminate(nil)
	case protocol.StatusPartialContent:
		cmd.sink.push(resp)
	default:
		cmd.sink.terminate(&errors.ServerError{Code: resp.Status.Code, Message: resp.Status.Message})
	}
}

// OnClose implements transport.Handler. Cancellation is all-or-nothing: every
// pending command, sent or queued, fails with the same close detail, and both
// the correlation table and the queue are empty afterwards.
func (c *Client) OnClose(detail transport.CloseDetail) {
	closeErr := &errors.ConnectionClosedError{Code: detail.Code, Reason: detail.Reason}

	c.mu.Lock()
	c.state = stateClosed
	cancelled := make([]*command, 0, len(c.pending))
	for _, cmd := range c.pending {
		cancelled = append(cancelled, cmd)
	}
	c.pending = make(map[string]*command)
	c.queue = nil
	c.lastAuthID = ""
	if c.metrics != nil {
		c.metrics.connectionStatus.Set(0)
		c.metrics.pendingCommands.Set(0)
	}
	c.mu.Unlock()

	for _, cmd := range cancelled {
		cmd.sink.terminate(closeErr)
	}

	c.logger.Info("connection closed",
		"code", detail.Code, "reason", detail.Reason, "cancelled", len(cancelled))
	c.closeOnce.Do(func() { close(c.closed) })
}

// OnError implements transport.Handler. Transport errors are informational:
// pending commands are resolved by a close event, never by an error event.
func (c *Client) OnError(err error) {
	c.logger.Warn("transport error", "error", err)
	if c.metrics != nil {
		c.metrics.transportErrors.Inc()
	}
}
