package am

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("logging.verbosity", 0)
	v.SetDefault("logging.json", false)

	// Tagset defaults
	v.SetDefault("tagset.paths", []string{})
	v.SetDefault("tagset.watch_debounce_ms", 300)

	// Filter defaults
	v.SetDefault("filter.mode", FilterPlain)
	v.SetDefault("filter.packages", []string{})

	// Generator defaults
	v.SetDefault("gen.out", "gen")
}

// BindEnvVars explicitly binds configuration keys that are usually set per
// environment rather than per project
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("tagset.paths", "TAGX_TAGSET_PATHS")
	v.BindEnv("logging.verbosity", "TAGX_LOGGING_VERBOSITY")
	v.BindEnv("logging.json", "TAGX_LOGGING_JSON")
}
