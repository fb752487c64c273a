// Package misc keeps program identification values, most of them are set
// during build with -ldflags.
package misc

import (
	"runtime/debug"
)

var (
	appName = "svgsprite"
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name used for logs, temporary files and reports.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git revision program was built from. When not set with
// -ldflags it is taken from build info if available.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
