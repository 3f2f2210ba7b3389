package liquor

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the engine options:
//
//	delimiters:
//	  output_open: "[["
//	  output_close: "]]"
//	max_depth: 50
//	max_iterations: 10000
//	strict_filters: true
//	globals:
//	  site: Example
//	store:
//	  driver: filesystem
//	  dsn: ./templates
//	cache:
//	  enabled: true
//	  ttl: 1m
//	  max_entries: 200
type Config struct {
	Delimiters    DelimiterConfig `yaml:"delimiters"`
	MaxDepth      *int            `yaml:"max_depth"`
	MaxIterations *int            `yaml:"max_iterations"`
	StrictFilters bool            `yaml:"strict_filters"`
	Globals       map[string]any  `yaml:"globals"`
	Store         StoreConfig     `yaml:"store"`
	Cache         CacheFileConfig `yaml:"cache"`
}

// DelimiterConfig overrides template delimiters. Empty fields keep the
// defaults.
type DelimiterConfig struct {
	OutputOpen  string `yaml:"output_open"`
	OutputClose string `yaml:"output_close"`
	TagOpen     string `yaml:"tag_open"`
	TagClose    string `yaml:"tag_close"`
}

// StoreConfig names a registered store driver and its connection string.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CacheFileConfig enables the compiled template cache.
type CacheFileConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTL        string `yaml:"ttl"` // Go duration, e.g. "90s"
	MaxEntries int    `yaml:"max_entries"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig parses and validates YAML config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, NewConfigError(ErrMsgConfigParse, "", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxDepth != nil && *c.MaxDepth < 0 {
		return NewConfigError(ErrMsgConfigInvalid, "max_depth", nil)
	}
	if c.MaxIterations != nil && *c.MaxIterations < 0 {
		return NewConfigError(ErrMsgConfigInvalid, "max_iterations", nil)
	}
	if c.Cache.MaxEntries < 0 {
		return NewConfigError(ErrMsgConfigInvalid, "cache.max_entries", nil)
	}
	if _, err := c.cacheTTL(); err != nil {
		return NewConfigError(ErrMsgConfigInvalid, "cache.ttl", err)
	}
	if c.Store.Driver == "" && c.Store.DSN != "" {
		return NewConfigError(ErrMsgConfigInvalid, "store.driver", nil)
	}
	return nil
}

func (c *Config) cacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Cache.TTL)
}

// Options converts the config into engine options. If a store driver is
// configured it is opened here; the resulting engine closes it on Close.
func (c *Config) Options() ([]Option, error) {
	opts := []Option{
		WithDelimiters(c.Delimiters.OutputOpen, c.Delimiters.OutputClose, c.Delimiters.TagOpen, c.Delimiters.TagClose),
		WithStrictFilters(c.StrictFilters),
	}
	if c.MaxDepth != nil {
		opts = append(opts, WithMaxDepth(*c.MaxDepth))
	}
	if c.MaxIterations != nil {
		opts = append(opts, WithMaxIterations(*c.MaxIterations))
	}
	if len(c.Globals) > 0 {
		opts = append(opts, WithGlobals(c.Globals))
	}
	if c.Cache.Enabled {
		ttl, err := c.cacheTTL()
		if err != nil {
			return nil, NewConfigError(ErrMsgConfigInvalid, "cache.ttl", err)
		}
		opts = append(opts, WithCache(CacheConfig{TTL: ttl, MaxEntries: c.Cache.MaxEntries}))
	}
	if c.Store.Driver != "" {
		store, err := OpenStore(c.Store.Driver, c.Store.DSN)
		if err != nil {
			return nil, err
		}
		opts = append(opts, withOwnedStore(store))
	}
	return opts, nil
}

// NewFromConfig creates an engine from a config. Extra options are
// applied after the config's own.
func NewFromConfig(cfg *Config, extra ...Option) (*Engine, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(append(opts, extra...)...)
}
