// Package version reports build metadata for the stylist binary.
package version

import (
	"runtime"
	"runtime/debug"
	"slices"
)

var version = "dev"

// editorConfigModule is the style-config interpreter linked into the binary.
const editorConfigModule = "github.com/editorconfig/editorconfig-core-go/v2"

// Version returns the current version string with the editorconfig suffix.
func Version() string {
	if ec := EditorConfigVersion(); ec != "" {
		return version + " (editorconfig " + ec + ")"
	}
	return version
}

// RawVersion returns the semantic version string without any suffix.
func RawVersion() string {
	return version
}

// EditorConfigVersion returns the linked editorconfig-core-go version from build info.
func EditorConfigVersion() string {
	ec, _ := readBuildInfo()
	return ec
}

// GoVersion returns the Go toolchain version used for the build.
func GoVersion() string {
	return runtime.Version()
}

// readBuildInfo reads debug.ReadBuildInfo once and extracts both
// the editorconfig dependency version and the VCS revision.
func readBuildInfo() (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	var ecVersion, commit string
	if idx := slices.IndexFunc(info.Deps, func(dep *debug.Module) bool {
		return dep.Path == editorConfigModule
	}); idx >= 0 {
		ecVersion = info.Deps[idx].Version
	}
	if idx := slices.IndexFunc(info.Settings, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	}); idx >= 0 {
		commit = info.Settings[idx].Value
		if len(commit) > 12 {
			commit = commit[:12]
		}
	}
	return ecVersion, commit
}

// Info holds structured version information for machine-readable output.
type Info struct {
	Version             string   `json:"version"`
	EditorConfigVersion string   `json:"editorconfigVersion,omitempty"`
	Platform            Platform `json:"platform"`
	GoVersion           string   `json:"goVersion"`
	GitCommit           string   `json:"gitCommit,omitempty"`
}

// Platform describes the OS and architecture.
type Platform struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// GetInfo returns structured version information.
func GetInfo() Info {
	ecVersion, commit := readBuildInfo()
	return Info{
		Version:             RawVersion(),
		EditorConfigVersion: ecVersion,
		Platform: Platform{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		GoVersion: GoVersion(),
		GitCommit: commit,
	}
}
