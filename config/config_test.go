package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8182, cfg.Port)
	assert.Equal(t, "/", cfg.Path)
	assert.False(t, cfg.SSL)
	assert.True(t, cfg.RejectUnauthorized)
	assert.False(t, cfg.Session)
	assert.Equal(t, "eval", cfg.Op)
	assert.Equal(t, "", cfg.Processor)
	assert.Equal(t, "application/json", cfg.Accept)
	assert.Equal(t, "gremlin-groovy", cfg.Language)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing host", func(c *Config) { c.Host = "" }, "host is required"},
		{"port too low", func(c *Config) { c.Port = 0 }, "out of range"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "out of range"},
		{"bad path", func(c *Config) { c.Path = "gremlin" }, "must start with '/'"},
		{"missing accept", func(c *Config) { c.Accept = "" }, "accept type is required"},
		{"missing op", func(c *Config) { c.Op = "" }, "op is required"},
		{"missing language", func(c *Config) { c.Language = "" }, "language is required"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestConfig_URL(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "ws://localhost:8182/", cfg.URL())

	cfg.SSL = true
	cfg.Host = "graph.example.com"
	cfg.Port = 443
	cfg.Path = "/gremlin"
	assert.Equal(t, "wss://graph.example.com:443/gremlin", cfg.URL())
}

func TestConfig_TLSClientConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.TLSClientConfig().InsecureSkipVerify)

	cfg.RejectUnauthorized = false
	assert.True(t, cfg.TLSClientConfig().InsecureSkipVerify)
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: graph.example.com
port: 8183
ssl: true
session: true
language: gremlin-lang
handshake_timeout: 5s
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "graph.example.com", cfg.Host)
	assert.Equal(t, 8183, cfg.Port)
	assert.True(t, cfg.SSL)
	assert.True(t, cfg.Session)
	assert.Equal(t, "gremlin-lang", cfg.Language)
	assert.Equal(t, 5*time.Second, cfg.HandshakeTimeout.Std())

	// defaults preserved for fields the file does not set
	assert.Equal(t, "/", cfg.Path)
	assert.Equal(t, "eval", cfg.Op)
	assert.Equal(t, "application/json", cfg.Accept)
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "dur.yaml")
	require.NoError(t, os.WriteFile(path, []byte("handshake_timeout: 250ms"), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.HandshakeTimeout.Std())

	bad := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("handshake_timeout: soon"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(filepath.Join(tmpDir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("host: ["), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(tmpDir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("port: 0"), 0644))
	_, err = Load(invalid)
	assert.Error(t, err)
}
