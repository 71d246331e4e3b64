package am

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for values the rest of the system would
// reject later. It reports the first problem found.
func (c *Config) Validate() error {
	if c.Logging.Verbosity < 0 || c.Logging.Verbosity > 3 {
		return fmt.Errorf("logging.verbosity must be between 0 and 3, got %d", c.Logging.Verbosity)
	}

	switch c.Filter.Mode {
	case "", FilterPlain, FilterAll, FilterNone:
		if len(c.Filter.Packages) > 0 {
			return fmt.Errorf("filter.packages is only valid with filter.mode = %q", FilterPackages)
		}
	case FilterPackages:
		if len(c.Filter.Packages) == 0 {
			return fmt.Errorf("filter.mode %q needs at least one entry in filter.packages", FilterPackages)
		}
	default:
		return fmt.Errorf("unknown filter.mode %q (supported: plain, all, none, packages)", c.Filter.Mode)
	}

	for _, p := range c.Tagset.Paths {
		if !hasTagsetExtension(p) {
			return fmt.Errorf("tagset path %q must be a .toml, .yaml or .yml file", p)
		}
	}

	if c.Tagset.WatchDebounceMs < 0 {
		return fmt.Errorf("tagset.watch_debounce_ms must not be negative, got %d", c.Tagset.WatchDebounceMs)
	}

	if len(c.Gen.Packages) > 0 && c.Gen.Out == "" {
		return fmt.Errorf("gen.out must be set when gen.packages is configured")
	}

	return nil
}

func hasTagsetExtension(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".toml") ||
		strings.HasSuffix(lower, ".yaml") ||
		strings.HasSuffix(lower, ".yml")
}
