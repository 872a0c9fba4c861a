// Package gremlin is a client library for Gremlin graph-query servers,
// speaking the Gremlin Server driver protocol over a persistent WebSocket.
//
// # Architecture
//
// The module is organised in layers, each usable on its own:
//
//	┌─────────────────────────────────────┐
//	│        driver.Client                │  Request lifecycle:
//	│  (Exec, Stream, MessageStream)      │  queueing, correlation,
//	└─────────────────────────────────────┘  partial-result assembly
//	           ↓ sends and receives via
//	┌─────────────────────────────────────┐
//	│      transport.Transport            │  Connection handling:
//	│     (WebSocket by default)          │  dial, frames, close detail
//	└─────────────────────────────────────┘
//	           ↓ encodes with
//	┌─────────────────────────────────────┐
//	│          protocol                   │  Wire format: request
//	│   (Request, Response, frames)       │  envelopes, status codes,
//	└─────────────────────────────────────┘  binary frame packing
//
// Supporting packages: config (YAML configuration with validation),
// errors (sentinels and typed errors shared across layers), metric
// (Prometheus registry and collectors), pkg/tlsutil (TLS client setup)
// and pkg/retry (dial backoff for the console).
//
// # Usage
//
// The entry point for applications is the driver package:
//
//	cfg := config.DefaultConfig()
//	cfg.Host = "graph.example.com"
//
//	client, err := driver.New(cfg)
//	if err != nil {
//		return err
//	}
//	if err := client.Connect(ctx); err != nil {
//		return err
//	}
//	defer client.Close()
//
//	for r := range client.Stream("g.V().limit(10)", nil, nil) {
//		if r.Err != nil {
//			return r.Err
//		}
//		fmt.Println(string(r.Data))
//	}
//
// cmd/gremlin-console builds an interactive terminal on top of the driver.
package gremlin
