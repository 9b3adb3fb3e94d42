package transfer

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Policy decides how an existing destination is replaced.
type Policy int

const (
	// ReplaceAtomic copies into a temporary sibling and renames it over the
	// destination, readers see either the old or the new content.
	ReplaceAtomic Policy = iota
	// DeleteThenCopy removes the destination first. A failure in between
	// leaves the destination absent.
	DeleteThenCopy
)

func (p Policy) String() string {
	switch p {
	case ReplaceAtomic:
		return "replace-atomic"
	case DeleteThenCopy:
		return "delete-then-copy"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func (p *Policy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "replace-atomic", "":
		*p = ReplaceAtomic
	case "delete-then-copy":
		*p = DeleteThenCopy
	default:
		return fmt.Errorf("unknown transfer policy %q", text)
	}
	return nil
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Config of a transfer client.
type Config struct {
	NameNodes   []string `toml:"name-nodes"`  // Namenode host:port, HADOOP_CONF_DIR is read when empty.
	User        string   `toml:"user"`        // Identity presented to the namenode.
	Policy      Policy   `toml:"policy"`      // Replacement of an existing destination.
	Parallelism int      `toml:"parallelism"` // Concurrent copies of CopyAll.
	LocalRoot   string   `toml:"local-root"`  // Copy below this local directory instead of HDFS.
	LogLevel    string   `toml:"log-level"`

	Files []Request `toml:"files"` // Copies run by the command line tool.
}

// DefaultParallelism bounds CopyAll when nothing else is configured.
const DefaultParallelism = 4

// DefaultConfig points at the single node sandbox namenode.
func DefaultConfig() *Config {
	return &Config{
		NameNodes:   []string{"192.168.99.100:8020"},
		User:        "cloudera",
		Policy:      ReplaceAtomic,
		Parallelism: DefaultParallelism,
		LogLevel:    "info",
		Files: []Request{
			{Src: "src/main/resources/sample.txt", Dst: "/user/cloudera/sample"},
		},
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

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	for _, nn := range c.NameNodes {
		if nn == "" {
			return fmt.Errorf("config name-nodes contains an empty address")
		}
	}
	if c.Policy != ReplaceAtomic && c.Policy != DeleteThenCopy {
		return fmt.Errorf("config policy %s is unknown", c.Policy)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("config parallelism %d is negative", c.Parallelism)
	}
	for i, f := range c.Files {
		if f.Src == "" || f.Dst == "" {
			return fmt.Errorf("config files[%d] needs both src and dst", i)
		}
	}
	return nil
}
