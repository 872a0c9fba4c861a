package driver

import (
	"encoding/json"
	"sync"

	"github.com/linkurious/gremlin-go/errors"
	"github.com/linkurious/gremlin-go/protocol"
)

// resultSink is the ordered, error-terminated push sequence backing every
// command. Producers (the dispatcher) never block: frames accumulate in an
// internal queue until a consumer drains them. At most one terminal event is
// recorded; pushes after termination are dropped.
type resultSink struct {
	mu     sync.Mutex
	buf    []*protocol.Response
	err    error
	done   bool
	signal chan struct{}
}

func newResultSink() *resultSink {
	return &resultSink{signal: make(chan struct{}, 1)}
}

// push appends one frame to the sequence.
func (s *resultSink) push(frame *protocol.Response) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.buf = append(s.buf, frame)
	s.mu.Unlock()
	s.wake()
}

// terminate ends the sequence. A nil error is the success terminal.
func (s *resultSink) terminate(err error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.err = err
	s.mu.Unlock()
	s.wake()
}

func (s *resultSink) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// next blocks until a frame is available or the sequence ends. ok reports
// whether a frame was returned; when false, err carries the terminal error
// (nil on success).
func (s *resultSink) next() (frame *protocol.Response, ok bool, err error) {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			frame = s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			return frame, true, nil
		}
		if s.done {
			err = s.err
			s.mu.Unlock()
			return nil, false, err
		}
		s.mu.Unlock()
		<-s.signal
	}
}

// Result is one logical value produced by an incremental sequence. A frame
// carrying several values yields one Result per value, in frame order.
// A non-nil Err terminates the sequence.
type Result struct {
	Data json.RawMessage
	Err  error
}

// Frame is one raw response frame produced by a raw sequence, including its
// status and metadata. A non-nil Err terminates the sequence.
type Frame struct {
	Response *protocol.Response
	Err      error
}

// collect drains a sink in the background and invokes cb exactly once, with
// either the ordered frames or the terminal error.
func collect(s *resultSink, cb func(error, []*protocol.Response)) {
	go func() {
		var frames []*protocol.Response
		for {
			frame, ok, err := s.next()
			if !ok {
				if err != nil {
					cb(err, nil)
				} else {
					cb(nil, frames)
				}
				return
			}
			frames = append(frames, frame)
		}
	}()
}

// stream adapts a sink into a flattened value sequence: one event per logical
// value rather than one per frame. Sink errors are re-wrapped onto the
// channel as the final event.
func stream(s *resultSink) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		for {
			frame, ok, err := s.next()
			if !ok {
				if err != nil {
					out <- Result{Err: errors.Wrap(err, "Client", "Stream", "receive")}
				}
				return
			}
			for _, value := range frame.Data() {
				out <- Result{Data: value}
			}
		}
	}()
	return out
}

// rawStream adapts a sink into a per-frame sequence with no flattening, for
// callers that need frame status and metadata.
func rawStream(s *resultSink) <-chan Frame {
	out := make(chan Frame)
	go func() {
		defer close(out)
		for {
			frame, ok, err := s.next()
			if !ok {
				if err != nil {
					out <- Frame{Err: err}
				}
				return
			}
			out <- Frame{Response: frame}
		}
	}()
	return out
}
