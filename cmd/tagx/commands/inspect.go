package commands

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/teranos/tagx/display"
	"github.com/teranos/tagx/mts/registry"
)

// InspectCmd builds and renders the mapping tree of one tag type
var InspectCmd = &cobra.Command{
	Use:   "inspect <type>",
	Short: "Build and render the mapping tree of a tag type",
	Long: `Build the mapping tree for a tag type and render every node:
distance from the root, explicit alias routes, convention routes, mirror
sets, value sources, and whether the node needs synthesis.

Examples:
  tagx inspect --tagset web.toml web.Route
  tagx inspect --tagset web.toml web.Route --json
  tagx inspect --tagset web.toml web.Route --toml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	InspectCmd.Flags().StringSlice("tagset", nil, "Tag-set definition files (repeatable)")
	InspectCmd.Flags().Bool("json", false, "Output the tree as JSON")
	InspectCmd.Flags().Bool("toml", false, "Output the tree as TOML")
}

func runInspect(cmd *cobra.Command, args []string) error {
	typeName := args[0]

	index, filter, err := loadIndex(cmd)
	if err != nil {
		return err
	}
	if filter.Excludes(typeName) {
		return fmt.Errorf("tag type %s is excluded by the active filter", typeName)
	}

	reg := registry.New(index, index)
	tree, err := reg.TreeFor(typeName, filter)
	if err != nil {
		return err
	}

	summary := display.Summarize(tree)
	switch {
	case display.ShouldOutputJSON(cmd):
		return display.OutputJSON(os.Stdout, summary)
	case flagBool(cmd, "toml"):
		data, err := toml.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal tree to TOML: %w", err)
		}
		fmt.Print(string(data))
		return nil
	default:
		display.RenderTree(tree)
		return nil
	}
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}
