// Package misc keeps small helpers which do not belong anywhere else.
package misc

import (
	"runtime/debug"
)

// set by the build with -ldflags, otherwise derived from build info
var (
	appName = "ams"
	version = ""
	gitHash = ""
)

// GetAppName returns short program name used for logs, temporary files and
// reports.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	if len(version) != 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) != 0 {
		return bi.Main.Version
	}
	return "unknown"
}

// GetGitHash returns VCS revision program was built from.
func GetGitHash() string {
	if len(gitHash) != 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				if len(s.Value) > 12 {
					return s.Value[:12]
				}
				return s.Value
			}
		}
	}
	return "unknown"
}
