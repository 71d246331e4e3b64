package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/tagx/am"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/tagset"
)

// tagsetPaths resolves the definition files for a command: the --tagset flag
// when given, the configured tagset.paths otherwise.
func tagsetPaths(cmd *cobra.Command) ([]string, error) {
	paths, _ := cmd.Flags().GetStringSlice("tagset")
	if len(paths) > 0 {
		return paths, nil
	}
	cfg, err := am.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if len(cfg.Tagset.Paths) == 0 {
		return nil, fmt.Errorf("no tag-set files: pass --tagset or configure tagset.paths")
	}
	return cfg.Tagset.Paths, nil
}

// loadIndex loads the resolved definition files into a fresh index and
// builds the configured type-name filter.
func loadIndex(cmd *cobra.Command) (*tagset.Index, mts.Filter, error) {
	paths, err := tagsetPaths(cmd)
	if err != nil {
		return nil, nil, err
	}
	index, err := tagset.Load(paths...)
	if err != nil {
		return nil, nil, err
	}
	filter, err := activeFilter()
	if err != nil {
		return nil, nil, err
	}
	return index, filter, nil
}

func activeFilter() (mts.Filter, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.Filter.BuildFilter()
}
