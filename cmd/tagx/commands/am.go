package commands

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/tagx/am"
	"github.com/teranos/tagx/display"
	"github.com/teranos/tagx/errors"
)

// AmCmd manages tagx configuration
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage tagx configuration (\"I am\")",
	Long: `am — Manage tagx configuration ("I am")

Display and manage tagx configuration settings.

Configuration sources (in order of precedence):
1. Environment variables (TAGX_* prefix)
2. Project config (./am.toml, searched upward)
3. User config (~/.tagx/am.toml)
4. System config (/etc/tagx/config.toml)
5. Default values

Examples:
  tagx am show                  # Show current configuration
  tagx am show --format json    # Show configuration in JSON format
  tagx am get tagset.paths      # Get a specific config value
  tagx am init                  # Write the defaults to ~/.tagx/am.toml
  tagx am validate              # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current tagx configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., tagset.paths, logging.verbosity)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to the user config file",
	Long:  "Write the effective configuration to ~/.tagx/am.toml as a starting point. Refuses to overwrite an existing file.",
	RunE:  runAmInit,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current tagx configuration is valid",
	RunE:  runAmValidate,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch configFormat {
	case "json":
		return display.OutputJSON(os.Stdout, cfg)

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Printf("# tagx configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Printf("# tagx configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}

	fmt.Println(am.Get(key))
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path, err := am.Init()
	if err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			return fmt.Errorf("config file %s already exists, not overwriting", path)
		}
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}
