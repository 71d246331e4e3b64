package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/tagx/am"
	"github.com/teranos/tagx/display"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/registry"
	"github.com/teranos/tagx/mts/tagset"
)

// ValidateCmd builds every mapping tree and reports configuration errors
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build every mapping tree and report configuration errors",
	Long: `Build the mapping tree of every tag type in the loaded tag sets and
report alias and mirror configuration errors. Exits non-zero when any
tree fails to build.

With --watch the definition files are reloaded and re-validated whenever
they change on disk.

Examples:
  tagx validate --tagset web.toml
  tagx validate --tagset web.toml --tagset cache.toml --watch`,
	RunE: runValidate,
}

func init() {
	ValidateCmd.Flags().StringSlice("tagset", nil, "Tag-set definition files (repeatable)")
	ValidateCmd.Flags().Bool("watch", false, "Re-validate when definition files change")
	ValidateCmd.Flags().Bool("json", false, "Output validation results as JSON")
}

// validationResult is the JSON projection of one run.
type validationResult struct {
	Checked int               `json:"checked"`
	Failed  int               `json:"failed"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	paths, err := tagsetPaths(cmd)
	if err != nil {
		return err
	}
	filter, err := activeFilter()
	if err != nil {
		return err
	}

	index, err := tagset.Load(paths...)
	if err != nil {
		return err
	}

	jsonOutput := display.ShouldOutputJSON(cmd)
	result := validateIndex(index, filter, jsonOutput)
	if jsonOutput {
		if err := display.OutputJSON(os.Stdout, result); err != nil {
			return err
		}
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return watchAndRevalidate(paths, filter, jsonOutput)
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d tag types failed validation", result.Failed, result.Checked)
	}
	return nil
}

// validateIndex builds every tree against a fresh registry so cached
// failures from a previous run cannot mask a fix.
func validateIndex(index *tagset.Index, filter mts.Filter, jsonOutput bool) validationResult {
	reg := registry.New(index, index)
	result := validationResult{Errors: make(map[string]string)}

	for _, name := range index.TypeNames() {
		if filter.Excludes(name) {
			continue
		}
		result.Checked++
		if _, err := reg.TreeFor(name, filter); err != nil {
			result.Failed++
			result.Errors[name] = err.Error()
			if !jsonOutput {
				pterm.Error.Printf("%s: %v\n", name, err)
			}
			continue
		}
		if !jsonOutput {
			pterm.Success.Printf("%s\n", name)
		}
	}

	if !jsonOutput {
		pterm.Println()
		if result.Failed > 0 {
			pterm.Error.Printf("%d of %d tag types failed validation\n", result.Failed, result.Checked)
		} else {
			pterm.Success.Printf("all %d tag types are valid\n", result.Checked)
		}
	}
	return result
}

func watchAndRevalidate(paths []string, filter mts.Filter, jsonOutput bool) error {
	watcher, err := tagset.NewWatcher(paths...)
	if err != nil {
		return err
	}
	if cfg, err := am.Load(); err == nil {
		watcher.SetDebounce(time.Duration(cfg.Tagset.WatchDebounceMs) * time.Millisecond)
	}

	watcher.OnReload(func(index *tagset.Index, err error) {
		if err != nil {
			pterm.Error.Printf("reload failed: %v\n", err)
			return
		}
		pterm.Info.Println("tag sets changed, re-validating")
		validateIndex(index, filter, jsonOutput)
	})
	watcher.Start()
	defer watcher.Stop()

	pterm.Info.Printf("watching %d tag-set files, press Ctrl+C to stop\n", len(paths))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	return nil
}
