// Package main provides an end-to-end smoke test CLI run against a live
// Gremlin server. Each scenario exercises one part of the driver protocol
// and the run exits non-zero when any scenario fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linkurious/gremlin-go/config"
	"github.com/linkurious/gremlin-go/driver"
	"github.com/linkurious/gremlin-go/protocol"
)

var (
	version = "dev"
	commit  = "unknown"
)

type cliFlags struct {
	host          string
	port          int
	path          string
	ssl           bool
	scenarioName  string
	timeout       time.Duration
	verbose       bool
	showVersion   bool
	listScenarios bool
}

// scenario is one end-to-end check against a live server. Scenarios that
// need a dedicated client configuration build their own inside run.
type scenario struct {
	name        string
	description string
	run         func(ctx context.Context, cfg *config.Config, logger *slog.Logger) error
}

var scenarios = []scenario{
	{"connect", "open and close a connection", runConnect},
	{"eval", "evaluate a constant expression", runEval},
	{"bindings", "evaluate with script bindings", runBindings},
	{"stream", "stream a multi-value result", runStream},
	{"session", "evaluate two scripts in one session", runSession},
	{"binary", "evaluate over binary frames", runBinary},
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Printf("gremlin-e2e %s (%s)\n", version, commit)
		return
	}
	if flags.listScenarios {
		for _, s := range scenarios {
			fmt.Printf("%-10s %s\n", s.name, s.description)
		}
		return
	}

	logger := setupLogger(flags.verbose)
	cfg := config.DefaultConfig()
	cfg.Host = flags.host
	cfg.Port = flags.port
	cfg.Path = flags.path
	cfg.SSL = flags.ssl
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(runScenarios(ctx, logger, cfg, flags))
}

func parseFlags() cliFlags {
	var flags cliFlags
	flag.StringVar(&flags.host, "host", "localhost", "Gremlin server host")
	flag.IntVar(&flags.port, "port", 8182, "Gremlin server port")
	flag.StringVar(&flags.path, "path", "/", "WebSocket endpoint path")
	flag.BoolVar(&flags.ssl, "ssl", false, "connect over wss")
	flag.StringVar(&flags.scenarioName, "scenario", "", "run a single scenario by name (default: all)")
	flag.DurationVar(&flags.timeout, "timeout", 30*time.Second, "per-scenario timeout")
	flag.BoolVar(&flags.verbose, "verbose", false, "enable debug logging")
	flag.BoolVar(&flags.showVersion, "version", false, "print version and exit")
	flag.BoolVar(&flags.listScenarios, "list", false, "list scenarios and exit")
	flag.Parse()
	return flags
}

func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runScenarios(ctx context.Context, logger *slog.Logger, cfg *config.Config, flags cliFlags) int {
	failed := 0
	ran := 0
	for _, s := range scenarios {
		if flags.scenarioName != "" && s.name != flags.scenarioName {
			continue
		}
		ran++

		scenarioCtx, cancel := context.WithTimeout(ctx, flags.timeout)
		start := time.Now()
		err := s.run(scenarioCtx, cfg, logger.With("scenario", s.name))
		cancel()

		if err != nil {
			logger.Error("scenario failed", "scenario", s.name, "error", err, "duration", time.Since(start))
			failed++
			continue
		}
		logger.Info("scenario passed", "scenario", s.name, "duration", time.Since(start))
	}

	if ran == 0 {
		logger.Error("unknown scenario", "scenario", flags.scenarioName)
		return 2
	}
	if failed > 0 {
		logger.Error("run failed", "failed", failed, "total", ran)
		return 1
	}
	logger.Info("run passed", "total", ran)
	return 0
}

// withClient connects a client built from cfg (optionally mutated), runs fn
// and tears the connection down.
func withClient(ctx context.Context, cfg *config.Config, mutate func(*config.Config), fn func(*driver.Client) error) error {
	clone := *cfg
	if mutate != nil {
		mutate(&clone)
	}
	client, err := driver.New(&clone)
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

// expect evaluates a script and checks the single streamed value against
// the expected JSON text.
func expect(client *driver.Client, script string, bindings map[string]any, want string) error {
	var got []string
	for r := range client.Stream(script, bindings, nil) {
		if r.Err != nil {
			return r.Err
		}
		got = append(got, string(r.Data))
	}
	if len(got) != 1 || got[0] != want {
		return fmt.Errorf("script %q returned %v, want [%s]", script, got, want)
	}
	return nil
}

func runConnect(ctx context.Context, cfg *config.Config, _ *slog.Logger) error {
	return withClient(ctx, cfg, nil, func(*driver.Client) error { return nil })
}

func runEval(ctx context.Context, cfg *config.Config, _ *slog.Logger) error {
	return withClient(ctx, cfg, nil, func(client *driver.Client) error {
		return expect(client, "1+1", nil, "2")
	})
}

func runBindings(ctx context.Context, cfg *config.Config, _ *slog.Logger) error {
	return withClient(ctx, cfg, nil, func(client *driver.Client) error {
		return expect(client, "x+y", map[string]any{"x": 4, "y": 38}, "42")
	})
}

func runStream(ctx context.Context, cfg *config.Config, _ *slog.Logger) error {
	return withClient(ctx, cfg, nil, func(client *driver.Client) error {
		count := 0
		for r := range client.Stream("(1..100).toList()", nil, nil) {
			if r.Err != nil {
				return r.Err
			}
			count++
		}
		if count != 100 {
			return fmt.Errorf("streamed %d values, want 100", count)
		}
		return nil
	})
}

func runSession(ctx context.Context, cfg *config.Config, _ *slog.Logger) error {
	return withClient(ctx, cfg, func(c *config.Config) { c.Session = true }, func(client *driver.Client) error {
		// Session state set by one script must be visible to the next.
		if err := drain(client, "a = 7", nil); err != nil {
			return err
		}
		return expect(client, "a*6", nil, "42")
	})
}

func runBinary(ctx context.Context, cfg *config.Config, _ *slog.Logger) error {
	return withClient(ctx, cfg, func(c *config.Config) { c.Binary = true }, func(client *driver.Client) error {
		return expect(client, "'héllo'.length()", nil, "5")
	})
}

// drain runs a script and discards its values, returning the first error.
func drain(client *driver.Client, script string, bindings map[string]any) error {
	done := make(chan error, 1)
	client.Exec(script, bindings, nil, func(err error, _ []*protocol.Response) {
		done <- err
	})
	return <-done
}
