// Package config defines the client configuration for the driver: connection
// endpoint, transport security, session mode, and request defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/linkurious/gremlin-go/pkg/tlsutil"
	"github.com/linkurious/gremlin-go/protocol"
)

// Config represents the complete client configuration.
// Request defaults (Op, Processor, Accept, Language) can be overridden
// per call; everything else is fixed for the lifetime of the client.
type Config struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
	Path string `json:"path" yaml:"path"`

	// SSL selects the secure transport scheme (wss:// instead of ws://)
	SSL bool `json:"ssl" yaml:"ssl"`
	// RejectUnauthorized controls server certificate verification. Setting it
	// to false maps to InsecureSkipVerify on the underlying TLS config.
	RejectUnauthorized bool `json:"reject_unauthorized" yaml:"reject_unauthorized"`
	// TLS carries certificate material for secure connections
	TLS tlsutil.ClientConfig `json:"tls,omitempty" yaml:"tls,omitempty"`

	// Session enables session mode: every command from the client instance is
	// bound to one server-side execution context.
	Session bool `json:"session" yaml:"session"`

	// Binary requests binary framing for outbound messages by default
	Binary bool `json:"binary" yaml:"binary"`

	// Request defaults
	Op        string `json:"op,omitempty"        yaml:"op,omitempty"`
	Processor string `json:"processor,omitempty" yaml:"processor,omitempty"`
	Accept    string `json:"accept,omitempty"    yaml:"accept,omitempty"`
	Language  string `json:"language,omitempty"  yaml:"language,omitempty"`

	// HandshakeTimeout bounds the WebSocket dial
	HandshakeTimeout Duration `json:"handshake_timeout,omitempty" yaml:"handshake_timeout,omitempty"`
}

// Duration wraps time.Duration so YAML and JSON configuration files can use
// human-readable values like "5s" or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns the default client configuration: a plaintext
// connection to a local Gremlin server with verification enabled for the
// case where SSL is later turned on.
func DefaultConfig() *Config {
	return &Config{
		Host:               "localhost",
		Port:               8182,
		Path:               "/",
		SSL:                false,
		RejectUnauthorized: true,
		Session:            false,
		Binary:             false,
		Op:                 protocol.DefaultOp,
		Processor:          "",
		Accept:             protocol.DefaultAccept,
		Language:           protocol.DefaultLanguage,
		HandshakeTimeout:   Duration(10 * time.Second),
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path %q must start with '/'", c.Path)
	}
	if c.Accept == "" {
		return errors.New("accept type is required")
	}
	if len(c.Accept) > 255 {
		return fmt.Errorf("accept type %q exceeds 255 bytes", c.Accept)
	}
	if c.Op == "" {
		return errors.New("op is required")
	}
	if c.Language == "" {
		return errors.New("language is required")
	}
	return nil
}

// URL builds the WebSocket endpoint URL from the configured host, port,
// path and SSL flag.
func (c *Config) URL() string {
	scheme := "ws"
	if c.SSL {
		scheme = "wss"
	}
	u := url.URL{
		Scheme: scheme,
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   c.Path,
	}
	return u.String()
}

// TLSClientConfig returns the TLS settings with RejectUnauthorized folded in.
func (c *Config) TLSClientConfig() tlsutil.ClientConfig {
	tlsCfg := c.TLS
	if !c.RejectUnauthorized {
		tlsCfg.InsecureSkipVerify = true
	}
	return tlsCfg
}

// Load reads a YAML configuration file, applying it on top of defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
