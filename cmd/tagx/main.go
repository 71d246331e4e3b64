package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/tagx/am"
	"github.com/teranos/tagx/cmd/tagx/commands"
	"github.com/teranos/tagx/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tagx",
	Short: "tagx - Merged tag resolution toolkit",
	Long: `tagx - Merged tag resolution toolkit.

tagx resolves merged views of metadata tags: tag types declare attributes
with defaults, meta-tags form hierarchies, and aliases and naming
conventions decide which value wins. The CLI is developer tooling over
that core for tag-set definition files and generated accessors.

Available commands:
  inspect  - Build and render the mapping tree of a tag type
  validate - Build every mapping tree and report configuration errors
  gen      - Generate tag-set files and typed accessors from Go structs
  am       - Manage tagx configuration ("I am")

Examples:
  tagx inspect --tagset web.toml web.Route
  tagx validate --tagset web.toml --watch
  tagx gen --pkg ./... --out gen
  tagx am show`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs := false
		if cfg, err := am.Load(); err == nil {
			if verbosity == 0 {
				verbosity = cfg.Logging.Verbosity
			}
			jsonLogs = cfg.Logging.JSON
		}
		if err := logger.InitializeWithVerbosity(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output machine-readable JSON")

	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.GenCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
