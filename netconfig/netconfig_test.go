package netconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
cycleTimeUs: 400
asyncMtu: 1400
relativeTime: true
nodes:
  - nodeId: 1
    mac: "00:11:22:33:44:55"
  - nodeId: 32
    mac: "00:11:22:33:44:66"
    multiplexedSlot: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(400), cfg.CycleTimeUs)
	assert.Equal(t, 400*time.Microsecond, cfg.CycleTime())
	assert.Equal(t, uint8(240), cfg.MNNodeID) // default
	assert.Equal(t, 1400, cfg.AsyncMTU)
	assert.True(t, cfg.RelativeTime)
	assert.False(t, cfg.NetTimeIsRealTime)
	require.Len(t, cfg.Nodes, 2)
	assert.Equal(t, 2, cfg.Nodes[1].MultiplexedSlot)

	mac, err := cfg.Nodes[0].HardwareAddr()
	require.NoError(t, err)
	assert.Equal(t, [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}, mac)

	assert.Len(t, cfg.CodecOptions(), 1)
	assert.NotNil(t, cfg.Codec())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			CycleTimeUs: 1000,
			MNNodeID:    240,
			AsyncMTU:    300,
			Nodes: []Node{
				{NodeID: 1, MAC: "00:11:22:33:44:55"},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cycle time", func(c *Config) { c.CycleTimeUs = 0 }},
		{"wrong MN node id", func(c *Config) { c.MNNodeID = 1 }},
		{"async MTU too small", func(c *Config) { c.AsyncMTU = 200 }},
		{"async MTU too large", func(c *Config) { c.AsyncMTU = 1600 }},
		{"node id zero", func(c *Config) { c.Nodes[0].NodeID = 0 }},
		{"node id reserved", func(c *Config) { c.Nodes[0].NodeID = 250 }},
		{"bad MAC", func(c *Config) { c.Nodes[0].MAC = "not-a-mac" }},
		{"duplicate node id", func(c *Config) {
			c.Nodes = append(c.Nodes, Node{NodeID: 1, MAC: "00:11:22:33:44:66"})
		}},
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
