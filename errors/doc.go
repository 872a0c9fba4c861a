// Package errors provides standardized error handling patterns for the driver.
//
// # Overview
//
// The errors package defines the three error kinds that reach application code
// through result sinks, plus the transport-level informational kind:
//
//   - ServerError: the server answered with a non-success status code; carries
//     the server message and the numeric code.
//   - ConnectionClosedError: the connection closed while commands were pending;
//     every pending command fails with the same close detail.
//   - TransportError: a socket-level failure reported by the transport event
//     channel. Informational only; pending commands are not terminated.
//
// All close-related errors satisfy errors.Is(err, ErrClosed), so callers can
// distinguish "the connection went away" from "the server rejected my query"
// without type assertions:
//
//	client.Exec("g.V().count()", nil, nil, func(err error, frames []*protocol.Response) {
//	    if errors.IsConnectionClosed(err) {
//	        // rebuild the connection and resubmit
//	    }
//	})
//
// Wrap errors with context for debugging:
//
//	if err := transport.Send(data, false); err != nil {
//	    return errors.Wrap(err, "Client", "submit", "send")
//	}
package errors
