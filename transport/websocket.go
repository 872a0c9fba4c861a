package transport

import (
	"context"
	"crypto/tls"
	stderrors "errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/linkurious/gremlin-go/errors"
)

// WebSocket implements Transport over a gorilla/websocket connection.
type WebSocket struct {
	handshakeTimeout time.Duration
	logger           *slog.Logger

	mu        sync.Mutex // protects conn during Open/Close and serializes writes
	conn      *websocket.Conn
	closeOnce sync.Once
}

// WebSocketOption configures a WebSocket transport
type WebSocketOption func(*WebSocket)

// WithHandshakeTimeout bounds the opening handshake
func WithHandshakeTimeout(d time.Duration) WebSocketOption {
	return func(w *WebSocket) {
		w.handshakeTimeout = d
	}
}

// WithLogger sets a custom logger for the transport
func WithLogger(logger *slog.Logger) WebSocketOption {
	return func(w *WebSocket) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWebSocket creates a WebSocket transport. The connection is not
// established until Open is called.
func NewWebSocket(opts ...WebSocketOption) *WebSocket {
	w := &WebSocket{
		handshakeTimeout: 10 * time.Second,
		logger:           slog.Default().With("component", "transport"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open dials the server and starts the read loop. Events are delivered to h
// from a single goroutine, preserving frame order.
func (w *WebSocket) Open(ctx context.Context, url string, tlsConfig *tls.Config, h Handler) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: w.handshakeTimeout,
		TLSClientConfig:  tlsConfig,
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return errors.Wrap(err, "WebSocket", "Open",
				"dial "+url+" (http status "+resp.Status+")")
		}
		return errors.Wrap(err, "WebSocket", "Open", "dial "+url)
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	w.logger.Debug("connection established", "url", url)

	h.OnOpen()
	go w.readLoop(conn, h)
	return nil
}

// Send transmits one frame. Binary frames use the WebSocket binary opcode,
// everything else goes out as text.
func (w *WebSocket) Send(data []byte, binary bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return errors.ErrNotConnected
	}

	messageType := websocket.TextMessage
	if binary {
		messageType = websocket.BinaryMessage
	}
	if err := w.conn.WriteMessage(messageType, data); err != nil {
		return errors.Wrap(err, "WebSocket", "Send", "write message")
	}
	return nil
}

// Close shuts down the connection. A close frame is sent on a best-effort
// basis; the read loop observes the closure and fires OnClose.
func (w *WebSocket) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		conn := w.conn
		w.mu.Unlock()
		if conn == nil {
			return
		}

		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = conn.Close()
	})
	return err
}

// readLoop delivers inbound frames until the connection dies, then reports
// the close detail. Runs on its own goroutine; it is the only reader.
func (w *WebSocket) readLoop(conn *websocket.Conn, h Handler) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			h.OnClose(w.closeDetail(err, h))
			return
		}
		h.OnMessage(data)
	}
}

// closeDetail extracts the close code and reason from a read error. Failures
// other than a clean close frame or a local Close are also reported through
// OnError first.
func (w *WebSocket) closeDetail(err error, h Handler) CloseDetail {
	var closeErr *websocket.CloseError
	if stderrors.As(err, &closeErr) {
		w.logger.Debug("connection closed by peer", "code", closeErr.Code, "reason", closeErr.Text)
		return CloseDetail{Code: closeErr.Code, Reason: closeErr.Text}
	}

	if stderrors.Is(err, net.ErrClosed) {
		// Local Close tore down the socket
		w.logger.Debug("connection closed")
		return CloseDetail{Code: websocket.CloseNormalClosure}
	}

	h.OnError(&errors.TransportError{Err: err})
	w.logger.Debug("connection closed", "error", err)
	return CloseDetail{Code: websocket.CloseAbnormalClosure, Reason: err.Error()}
}
