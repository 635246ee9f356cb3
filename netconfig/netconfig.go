// Package netconfig loads the network configuration a POWERLINK segment
// is commissioned with: cycle timing, the node list and the feature flags
// that decide which optional SoC fields appear on the wire.
package netconfig

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	"github.com/FabianPetersen/powerlink"
)

// A Node describes one controlled node on the segment.
type Node struct {
	NodeID uint8  `mapstructure:"nodeId"`
	MAC    string `mapstructure:"mac"`
	// MultiplexedSlot assigns the node to a slot of the multiplexed
	// cycle; 0 polls it every cycle.
	MultiplexedSlot int `mapstructure:"multiplexedSlot"`
}

// HardwareAddr parses the configured MAC address.
func (n *Node) HardwareAddr() ([6]byte, error) {
	var mac [6]byte
	hw, err := net.ParseMAC(n.MAC)
	if err != nil {
		return mac, fmt.Errorf("netconfig: node %d: %w", n.NodeID, err)
	}
	if len(hw) != 6 {
		return mac, fmt.Errorf("netconfig: node %d: %q is not a 48-bit address", n.NodeID, n.MAC)
	}
	copy(mac[:], hw)
	return mac, nil
}

// Config is the commissioned configuration of one segment.
type Config struct {
	// CycleTimeUs is the isochronous cycle length in microseconds.
	CycleTimeUs uint32 `mapstructure:"cycleTimeUs"`
	// MNNodeID is the managing node id, fixed to 240 by the protocol.
	MNNodeID uint8 `mapstructure:"mnNodeId"`
	// AsyncMTU bounds asynchronous frame payloads, 300..1500 octets.
	AsyncMTU int `mapstructure:"asyncMtu"`
	// NetTimeIsRealTime enables the SoC net time field
	// (D_NMT_NetTimeIsRealTime_BOOL).
	NetTimeIsRealTime bool `mapstructure:"netTimeIsRealTime"`
	// RelativeTime enables the SoC relative time field
	// (D_NMT_RelativeTime_BOOL).
	RelativeTime bool `mapstructure:"relativeTime"`
	Nodes        []Node `mapstructure:"nodes"`
}

// Load reads a configuration file (any format viper understands) with
// PLK_-prefixed environment overrides, and validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("PLK")
	v.AutomaticEnv()
	v.SetDefault("cycleTimeUs", 1000)
	v.SetDefault("mnNodeId", powerlink.NodeIDMN)
	v.SetDefault("asyncMtu", 300)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("netconfig: read %s: %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("netconfig: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against the protocol limits.
func (c *Config) Validate() error {
	if c.CycleTimeUs == 0 {
		return fmt.Errorf("netconfig: cycle time must be positive")
	}
	if c.MNNodeID != powerlink.NodeIDMN {
		return fmt.Errorf("netconfig: managing node id must be %d, got %d", powerlink.NodeIDMN, c.MNNodeID)
	}
	if c.AsyncMTU < 300 || c.AsyncMTU > 1500 {
		return fmt.Errorf("netconfig: async MTU %d outside 300..1500", c.AsyncMTU)
	}

	var seen []uint8
	for _, n := range c.Nodes {
		if n.NodeID < 1 || n.NodeID > powerlink.MaxCNNodeID {
			return fmt.Errorf("netconfig: node id %d outside 1..%d", n.NodeID, powerlink.MaxCNNodeID)
		}
		if slices.Contains(seen, n.NodeID) {
			return fmt.Errorf("netconfig: duplicate node id %d", n.NodeID)
		}
		seen = append(seen, n.NodeID)
		if _, err := n.HardwareAddr(); err != nil {
			return err
		}
	}
	return nil
}

// CycleTime returns the cycle length as a duration.
func (c *Config) CycleTime() time.Duration {
	return time.Duration(c.CycleTimeUs) * time.Microsecond
}

// CodecOptions maps the feature flags to codec options.
func (c *Config) CodecOptions() []powerlink.Option {
	var opts []powerlink.Option
	if c.NetTimeIsRealTime {
		opts = append(opts, powerlink.WithNetTime())
	}
	if c.RelativeTime {
		opts = append(opts, powerlink.WithRelativeTime())
	}
	return opts
}

// Codec returns a codec configured for this segment.
func (c *Config) Codec() *powerlink.Codec {
	return powerlink.NewCodec(c.CodecOptions()...)
}
