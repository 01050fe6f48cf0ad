// Package misc holds small helpers which do not belong anywhere else.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "folio"

// GetAppName returns short program name to be used in logs, temporary file
// names and similar places.
func GetAppName() string {
	return appName
}

var buildInfo = sync.OnceValue(func() (bi struct{ version, hash string }) {
	bi.version, bi.hash = "unknown", "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if len(info.Main.Version) != 0 {
		bi.version = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			bi.hash = s.Value
		}
	}
	return
})

// GetVersion returns program version embedded during build.
func GetVersion() string {
	return buildInfo().version
}

// GetGitHash returns VCS revision embedded during build.
func GetGitHash() string {
	return buildInfo().hash
}
