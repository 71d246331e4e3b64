package typegen

import (
	"os"
	"path/filepath"

	"github.com/teranos/tagx/errors"
)

// WriteFiles writes a run's output under outDir, one directory per scanned
// package: <outDir>/<pkg>/tags_gen.go (accessors) and
// <outDir>/<pkg>/tagset_gen.toml (definitions). Returns the written paths.
func WriteFiles(res *Result, outDir string) ([]string, error) {
	var written []string
	for _, pr := range res.Packages {
		dir := filepath.Join(outDir, pr.PkgName)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return written, errors.Wrapf(err, "typegen: failed to create %s", dir)
		}

		goPath := filepath.Join(dir, "tags_gen.go")
		if err := os.WriteFile(goPath, pr.Accessors, 0644); err != nil {
			return written, errors.Wrapf(err, "typegen: failed to write %s", goPath)
		}
		written = append(written, goPath)

		tomlPath := filepath.Join(dir, "tagset_gen.toml")
		if err := os.WriteFile(tomlPath, pr.Tagset, 0644); err != nil {
			return written, errors.Wrapf(err, "typegen: failed to write %s", tomlPath)
		}
		written = append(written, tomlPath)
	}
	return written, nil
}
