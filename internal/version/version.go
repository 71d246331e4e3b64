// Package version reports build information baked into the binary by the Go
// toolchain's VCS stamping.
package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/earthboundkid/versioninfo/v2"
)

// Info contains version and build information
type Info struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	buildTime := "unknown"
	if !versioninfo.LastCommit.IsZero() {
		buildTime = versioninfo.LastCommit.Format(time.RFC3339)
	}
	return Info{
		Version:   versioninfo.Version,
		Revision:  versioninfo.Revision,
		Dirty:     versioninfo.DirtyBuild,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	return fmt.Sprintf("tagx %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
}

// Short returns a short revision string
func (i Info) Short() string {
	rev := i.Revision
	if len(rev) >= 7 {
		rev = rev[:7]
	}
	if i.Dirty {
		rev += "-dirty"
	}
	return rev
}
