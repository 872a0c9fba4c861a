package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler collects transport events for assertions.
type recordingHandler struct {
	opened   chan struct{}
	messages chan []byte
	closed   chan CloseDetail
	errs     chan error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		opened:   make(chan struct{}, 1),
		messages: make(chan []byte, 16),
		closed:   make(chan CloseDetail, 1),
		errs:     make(chan error, 16),
	}
}

func (h *recordingHandler) OnOpen()               { h.opened <- struct{}{} }
func (h *recordingHandler) OnMessage(data []byte) { h.messages <- data }
func (h *recordingHandler) OnClose(d CloseDetail) { h.closed <- d }
func (h *recordingHandler) OnError(err error)     { h.errs <- err }

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// echoServer upgrades each request and echoes frames back with their
// original message type.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestWebSocket_OpenSendReceive(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	handler := newRecordingHandler()
	ws := NewWebSocket(WithHandshakeTimeout(2 * time.Second))

	require.NoError(t, ws.Open(context.Background(), wsURL(server), nil, handler))
	defer ws.Close()

	select {
	case <-handler.opened:
	case <-time.After(time.Second):
		t.Fatal("OnOpen not fired")
	}

	require.NoError(t, ws.Send([]byte(`{"requestId":"r1"}`), false))

	select {
	case msg := <-handler.messages:
		assert.Equal(t, `{"requestId":"r1"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("echo not received")
	}
}

func TestWebSocket_SendBeforeOpen(t *testing.T) {
	ws := NewWebSocket()
	assert.Error(t, ws.Send([]byte("x"), false))
}

func TestWebSocket_OpenUnreachable(t *testing.T) {
	handler := newRecordingHandler()
	ws := NewWebSocket(WithHandshakeTimeout(200 * time.Millisecond))

	err := ws.Open(context.Background(), "ws://127.0.0.1:1/", nil, handler)
	assert.Error(t, err)
	assert.Empty(t, handler.opened)
}

func TestWebSocket_CloseFiresOnClose(t *testing.T) {
	server := echoServer(t)
	defer server.Close()

	handler := newRecordingHandler()
	ws := NewWebSocket()
	require.NoError(t, ws.Open(context.Background(), wsURL(server), nil, handler))
	<-handler.opened

	require.NoError(t, ws.Close())

	select {
	case <-handler.closed:
	case <-time.After(time.Second):
		t.Fatal("OnClose not fired after local Close")
	}
}

func TestWebSocket_ServerCloseDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "maintenance window")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		// Keep the TCP connection up long enough for the close frame to be read
		_, _, _ = conn.ReadMessage()
		conn.Close()
	}))
	defer server.Close()

	handler := newRecordingHandler()
	ws := NewWebSocket()
	require.NoError(t, ws.Open(context.Background(), wsURL(server), nil, handler))
	<-handler.opened

	select {
	case detail := <-handler.closed:
		assert.Equal(t, websocket.CloseGoingAway, detail.Code)
		assert.Equal(t, "maintenance window", detail.Reason)
	case <-time.After(time.Second):
		t.Fatal("OnClose not fired after server close")
	}
}

func TestWebSocket_BinaryFrames(t *testing.T) {
	types := make(chan int, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		mt, _, err := conn.ReadMessage()
		if err != nil {
			return
		}
		types <- mt
	}))
	defer server.Close()

	handler := newRecordingHandler()
	ws := NewWebSocket()
	require.NoError(t, ws.Open(context.Background(), wsURL(server), nil, handler))
	defer ws.Close()
	<-handler.opened

	require.NoError(t, ws.Send([]byte{0x10, 'a', 'p', 'p'}, true))

	select {
	case mt := <-types:
		assert.Equal(t, websocket.BinaryMessage, mt)
	case <-time.After(time.Second):
		t.Fatal("server did not receive frame")
	}
}
