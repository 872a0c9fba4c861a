// Package driver implements the client-side protocol engine for a Gremlin
// graph-query server: request construction, connection-state tracking,
// command queueing while disconnected, request/response correlation,
// multi-frame response reassembly, and cancellation of in-flight requests
// on disconnect.
//
// # Lifecycle
//
// A command is created per execute/stream call, queued or sent, receives zero
// or more partial-content frames, then exactly one terminal event, at which
// point it leaves the correlation table. A disconnect while a command is
// pending forces immediate error termination.
//
// # Basic usage
//
//	cfg := config.DefaultConfig()
//	cfg.Host = "graph.example.com"
//
//	client, err := driver.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	for r := range client.Stream("g.V().limit(n)", map[string]any{"n": 10}, nil) {
//	    if r.Err != nil {
//	        log.Fatal(r.Err)
//	    }
//	    fmt.Println(string(r.Data))
//	}
//
// Commands may be submitted before Connect; they are transmitted in
// submission order once the connection opens.
//
// # Result shapes
//
// The three public operations are different consumption strategies over the
// same underlying ordered, error-terminated sequence: Exec collects
// everything and invokes a callback once, Stream flattens frames into one
// event per logical value, and MessageStream exposes raw frames with their
// status and metadata.
//
// # Concurrency
//
// A Client is safe for concurrent use. Submissions return immediately;
// results arrive through the callback or channel. There is no per-command
// cancellation or timeout: a command with no matching response stays pending
// until the connection closes.
package driver
