package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/tagx/am"
	"github.com/teranos/tagx/mts/typegen"
)

// GenCmd generates tag-set files and typed accessors from Go structs
var GenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate tag-set files and typed accessors from Go structs",
	Long: `Scan Go packages for structs carrying tagx field tags and generate,
per package, a tag-set definition file and typed accessor adapters over
merged views.

Examples:
  tagx gen --pkg ./... --out gen
  tagx gen --pkg ./web --pkg ./cache --out internal/tags`,
	RunE: runGen,
}

func init() {
	GenCmd.Flags().StringSlice("pkg", nil, "Go package patterns to scan (repeatable)")
	GenCmd.Flags().String("out", "", "Output directory for generated files")
}

func runGen(cmd *cobra.Command, args []string) error {
	patterns, _ := cmd.Flags().GetStringSlice("pkg")
	out, _ := cmd.Flags().GetString("out")

	if cfg, err := am.Load(); err == nil {
		if len(patterns) == 0 {
			patterns = cfg.Gen.Packages
		}
		if out == "" {
			out = cfg.Gen.Out
		}
	}
	if len(patterns) == 0 {
		return fmt.Errorf("no packages to scan: pass --pkg or configure gen.packages")
	}

	result, err := typegen.Generate(typegen.Options{Patterns: patterns})
	if err != nil {
		return err
	}
	if len(result.Packages) == 0 {
		pterm.Warning.Println("no tag structs found")
		return nil
	}

	written, err := typegen.WriteFiles(result, out)
	if err != nil {
		return err
	}
	for _, path := range written {
		pterm.Success.Printf("wrote %s\n", path)
	}
	return nil
}
