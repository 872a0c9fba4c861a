package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/linkurious/gremlin-go/config"
	"github.com/linkurious/gremlin-go/driver"
	"github.com/linkurious/gremlin-go/errors"
	"github.com/linkurious/gremlin-go/metric"
	"github.com/linkurious/gremlin-go/pkg/retry"
)

var (
	cfgFile     string
	flagHost    string
	flagPort    int
	flagPath    string
	flagSSL     bool
	flagNoCheck bool
	flagSession bool
	flagBinary  bool
	flagAccept  string
	metricsAddr    string
	connectRetries int
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "gremlin-console",
	Short: "Interactive console for Gremlin servers",
	Long: `gremlin-console opens a persistent WebSocket connection to a Gremlin
server and evaluates scripts interactively, streaming results as they
arrive. Use the "query" subcommand for one-shot evaluation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runREPL(cmd)
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "path to a YAML config file")
	flags.StringVar(&flagHost, "host", "localhost", "Gremlin server host")
	flags.IntVar(&flagPort, "port", 8182, "Gremlin server port")
	flags.StringVar(&flagPath, "path", "/", "WebSocket endpoint path")
	flags.BoolVar(&flagSSL, "ssl", false, "connect over wss")
	flags.BoolVar(&flagNoCheck, "insecure", false, "skip TLS certificate verification")
	flags.BoolVar(&flagSession, "session", false, "bind all requests to a server-side session")
	flags.BoolVar(&flagBinary, "binary", false, "send requests as binary frames")
	flags.StringVar(&flagAccept, "accept", "", "serialization MIME type requested from the server")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090)")
	flags.IntVar(&connectRetries, "connect-retries", 1, "number of connection attempts before giving up")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// buildConfig layers command line flags over the config file (if any)
// over the defaults. Only flags the user actually set override the file.
func buildConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, errors.Wrap(err, "console", "buildConfig", "load config file")
		}
		cfg = loaded
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("host") {
		cfg.Host = flagHost
	}
	if flags.Changed("port") {
		cfg.Port = flagPort
	}
	if flags.Changed("path") {
		cfg.Path = flagPath
	}
	if flags.Changed("ssl") {
		cfg.SSL = flagSSL
	}
	if flags.Changed("insecure") {
		cfg.RejectUnauthorized = !flagNoCheck
	}
	if flags.Changed("session") {
		cfg.Session = flagSession
	}
	if flags.Changed("binary") {
		cfg.Binary = flagBinary
	}
	if flags.Changed("accept") {
		cfg.Accept = flagAccept
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newClient builds a driver client from the resolved config. The returned
// registry is nil unless metrics were requested.
func newClient() (*driver.Client, *metric.MetricsRegistry, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, nil, err
	}

	opts := []driver.Option{driver.WithLogger(newLogger())}
	var registry *metric.MetricsRegistry
	if metricsAddr != "" {
		registry = metric.NewMetricsRegistry()
		opts = append(opts, driver.WithMetricsRegistry(registry))
	}

	client, err := driver.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return client, registry, nil
}

// connect dials the server, retrying with backoff when more than one
// attempt was requested. Servers are often still starting when the
// console launches.
func connect(ctx context.Context, client *driver.Client) error {
	retryCfg := retry.DialConfig()
	retryCfg.MaxAttempts = connectRetries
	return retry.Do(ctx, retryCfg, func() error {
		return client.Connect(ctx)
	})
}
