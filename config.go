package hbkit

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config tells the client where the cluster is and how to talk to it.
type Config struct {
	Driver      string            `toml:"driver"`       // Registered driver name, "thrift" or "memory".
	Quorum      []string          `toml:"quorum"`       // Cluster hosts.
	Port        int               `toml:"port"`         // Client port on every quorum host.
	User        string            `toml:"user"`         // Identity presented to the cluster.
	Gateway     string            `toml:"gateway"`      // Thrift gateway URL, derived from the quorum when empty.
	Headers     map[string]string `toml:"headers"`      // Extra HTTP headers sent to the gateway.
	Timeout     Duration          `toml:"timeout"`      // Upper bound of a call whose context has no deadline, 0 disables it.
	ScanCaching int               `toml:"scan-caching"` // Rows fetched per scanner round trip.
	LogLevel    string            `toml:"log-level"`
	// RecreatePolicy is how tools ensure their tables, see ParseRecreatePolicy.
	RecreatePolicy string `toml:"recreate-policy"`
}

// Duration is a time.Duration read from strings like "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// BatchResultSize is the default scanner caching, 64 rows of roughly 1KB each.
const BatchResultSize = 1 << 6

// DefaultConfig points at the single node sandbox cluster.
func DefaultConfig() *Config {
	return &Config{
		Driver:      "thrift",
		Quorum:      []string{"192.168.99.100"},
		Port:        2182,
		Timeout:     Duration{10 * time.Second},
		ScanCaching: BatchResultSize,
		LogLevel:    "info",

		RecreatePolicy: AlwaysRecreate.String(),
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports a configuration that cannot reach any cluster.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Gateway == "" && len(c.Quorum) == 0 {
		return fmt.Errorf("config has neither quorum nor gateway address")
	}
	for _, h := range c.Quorum {
		if h == "" {
			return fmt.Errorf("config quorum contains an empty host")
		}
	}
	if c.Gateway == "" && (c.Port <= 0 || c.Port > 65535) {
		return fmt.Errorf("config port %d out of range", c.Port)
	}
	if c.ScanCaching < 0 {
		return fmt.Errorf("config scan-caching %d is negative", c.ScanCaching)
	}
	if _, err := ParseRecreatePolicy(c.RecreatePolicy); err != nil {
		return fmt.Errorf("config recreate-policy: %w", err)
	}
	return nil
}

// Addrs returns host:port for every quorum member.
func (c *Config) Addrs() []string {
	addrs := make([]string, 0, len(c.Quorum))
	for _, h := range c.Quorum {
		addrs = append(addrs, net.JoinHostPort(h, strconv.Itoa(c.Port)))
	}
	return addrs
}

// GatewayURL is the thrift endpoint: Gateway if set, the first quorum member otherwise.
func (c *Config) GatewayURL() string {
	if c.Gateway != "" {
		return c.Gateway
	}
	if len(c.Quorum) == 0 {
		return ""
	}
	return "http://" + c.Addrs()[0] + "/"
}

func (c *Config) scanCaching() int {
	if c.ScanCaching <= 0 {
		return BatchResultSize
	}
	return c.ScanCaching
}
