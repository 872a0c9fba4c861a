// Package transport provides the socket layer used by the driver: an abstract
// Transport interface over which protocol frames travel, and a WebSocket
// implementation backed by gorilla/websocket.
package transport

import (
	"context"
	"crypto/tls"
)

// CloseDetail describes why a connection closed.
type CloseDetail struct {
	// Code is the close status code reported by the peer, 0 if unknown
	Code int
	// Reason is the close reason text, may be empty
	Reason string
}

// Handler receives transport events. All callbacks for one connection are
// invoked from a single goroutine, in order: OnOpen once, then any number of
// OnMessage and OnError, then OnClose exactly once.
type Handler interface {
	// OnOpen fires when the connection is established
	OnOpen()
	// OnMessage delivers one complete inbound frame
	OnMessage(data []byte)
	// OnClose fires when the connection terminates, with close detail
	OnClose(detail CloseDetail)
	// OnError reports a socket-level failure. Informational: OnClose still
	// follows if the failure terminates the connection.
	OnError(err error)
}

// Transport is the abstract socket consumed by the driver. Implementations
// handle framing and connection management internally and report events
// through the Handler passed to Open.
type Transport interface {
	// Open establishes the connection and starts delivering events to h.
	// The context bounds connection establishment only.
	Open(ctx context.Context, url string, tlsConfig *tls.Config, h Handler) error

	// Send transmits one outbound frame, as text when binary is false.
	// Safe for concurrent use.
	Send(data []byte, binary bool) error

	// Close shuts down the connection. The handler's OnClose fires once the
	// read loop observes the closure.
	Close() error
}
