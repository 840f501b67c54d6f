// Package version identifies the running routing-service build in the
// health endpoint. Release builds stamp Release via -ldflags; everything
// else is read from the binary's embedded build info.
package version

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Service is the name this deployable reports everywhere it identifies
// itself (health endpoint, startup banner).
const Service = "routing-service"

// Release is stamped by the build, e.g.
// -ldflags "-X healthroute/internal/version.Release=v1.4.2".
var Release = "dev"

// Info is the build identity rendered in the /health response.
type Info struct {
	Service   string `json:"service"`
	Release   string `json:"release"`
	Commit    string `json:"commit,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var (
	once    sync.Once
	current Info
)

// Current returns the build identity. The embedded build info never
// changes at runtime, so it is read once and memoized.
func Current() Info {
	once.Do(func() {
		current = Info{
			Service:   Service,
			Release:   Release,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				current.Commit = s.Value
			case "vcs.modified":
				current.Dirty = s.Value == "true"
			}
		}
	})
	return current
}
