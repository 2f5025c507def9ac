package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/var/run/spyglass.sock", cfg.Control.Socket)
	assert.Equal(t, "schemas", cfg.Paths.SchemaDir)
	assert.True(t, cfg.Filter.BlacklistEnabled)
	assert.True(t, cfg.Output.HexDump)
	assert.Equal(t, uint16(9000), cfg.Capture.ServerPort)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
paths:
  schema_dir: /opt/spyglass/schemas
capture:
  pcap: session.pcap
  server_ip: 10.1.1.1
  server_port: 7777
filter:
  blacklist_enabled: false
  min_size: 10
  include: [OP_Chat, "513"]
output:
  hex_dump: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/spyglass/schemas", cfg.Paths.SchemaDir)
	assert.Equal(t, "10.1.1.1", cfg.Capture.ServerIP)
	assert.Equal(t, uint16(7777), cfg.Capture.ServerPort)
	assert.False(t, cfg.Filter.BlacklistEnabled)
	assert.Equal(t, uint32(10), cfg.Filter.MinSize)
	assert.Equal(t, []string{"OP_Chat", "513"}, cfg.Filter.Include)
	assert.False(t, cfg.Output.HexDump)
	// untouched keys keep their defaults
	assert.True(t, cfg.Output.Timestamp)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml:::"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.Filter.MinSize = 42
	cfg.Filter.Exclude = []string{"OP_Noise"}
	require.NoError(t, Save(cfg, path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), reloaded.Filter.MinSize)
	assert.Equal(t, []string{"OP_Noise"}, reloaded.Filter.Exclude)
}
