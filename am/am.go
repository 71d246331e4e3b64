package am

import (
	"fmt"

	"github.com/teranos/tagx/mts"
)

// Config represents the core tagx configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Tagset  TagsetConfig  `mapstructure:"tagset"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Gen     GenConfig     `mapstructure:"gen"`
}

// LoggingConfig configures the global logger
type LoggingConfig struct {
	Verbosity int  `mapstructure:"verbosity"` // 0 = warnings, 1 = info, 2 = debug, 3 = debug + caller traces
	JSON      bool `mapstructure:"json"`      // Structured JSON output instead of console encoding
}

// TagsetConfig configures tag-set definition file loading
type TagsetConfig struct {
	Paths           []string `mapstructure:"paths"`             // Definition files loaded into the default index
	WatchDebounceMs int      `mapstructure:"watch_debounce_ms"` // Quiet period before a watched reload fires
}

// FilterConfig configures the default type-name filter
type FilterConfig struct {
	Mode     string   `mapstructure:"mode"`     // plain, all, none, packages
	Packages []string `mapstructure:"packages"` // Excluded package prefixes when mode = packages
}

// GenConfig configures the accessor code generator
type GenConfig struct {
	Packages []string `mapstructure:"packages"` // Go package patterns to scan for tag structs
	Out      string   `mapstructure:"out"`      // Output directory for generated files
}

// Filter mode constants
const (
	FilterPlain    = "plain"
	FilterAll      = "all"
	FilterNone     = "none"
	FilterPackages = "packages"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// BuildFilter returns the mts.Filter the configuration selects.
func (c *FilterConfig) BuildFilter() (mts.Filter, error) {
	switch c.Mode {
	case "", FilterPlain:
		return mts.PlainFilter, nil
	case FilterAll:
		return mts.AllFilter, nil
	case FilterNone:
		return mts.NoneFilter, nil
	case FilterPackages:
		return mts.Packages(c.Packages...), nil
	default:
		return nil, fmt.Errorf("unknown filter mode %q (supported: plain, all, none, packages)", c.Mode)
	}
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Logging: {Verbosity: %d}, Tagset: %d paths, Filter: %s}",
		c.Logging.Verbosity, len(c.Tagset.Paths), c.Filter.Mode)
}
