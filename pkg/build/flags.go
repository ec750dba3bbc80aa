// SPDX-License-Identifier: MIT
//
// Package build reports what binary is running. Release builds stamp the
// name, time, commit and version with -ldflags:
//
//	go build -ldflags "-X wakeup/pkg/build.buildVersion=v0.3.0 ..."
//
// Builds without ldflags (go run, go install, tests) fall back to the
// module version and VCS settings the Go toolchain embeds.
package build

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// DefaultName is reported when no name was stamped.
const DefaultName = "wakeup"

// Sources of the build information.
const (
	SourceLDFlags   = "ldflags"
	SourceBuildInfo = "buildinfo"
	SourceNone      = "none"
)

// Info describes the running binary.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
	Source  string // One of the Source* constants.
}

// String formats the info for --version.
func (i Info) String() string {
	var extra []string
	if i.Commit != "unknown" {
		extra = append(extra, "commit "+i.Commit)
	}
	if i.Time != "unknown" {
		extra = append(extra, "built "+i.Time)
	}
	if len(extra) == 0 {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(extra, ", "))
}

// Set with -ldflags -X.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
)

var (
	readBuildInfo = debug.ReadBuildInfo
	info          = defaultInfo()
)

func defaultInfo() *Info {
	return &Info{
		Name:    DefaultName,
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
		Source:  SourceNone,
	}
}

// Initialize resolves the build information. Stamped ldflags win; without
// them the embedded module and VCS data is used. A release build that
// stamps only some of the ldflags is a packaging mistake and returns an
// error naming the missing ones.
func Initialize() error {
	resolved := defaultInfo()

	stamped := map[string]string{
		"BuildTime":    buildTime,
		"BuildCommit":  buildCommit,
		"BuildVersion": buildVersion,
	}
	var missing []string
	for _, flag := range []string{"BuildTime", "BuildCommit", "BuildVersion"} {
		if stamped[flag] == "" {
			missing = append(missing, flag)
		}
	}

	switch {
	case len(missing) == 0:
		resolved.Time = buildTime
		resolved.Commit = buildCommit
		resolved.Version = buildVersion
		resolved.Source = SourceLDFlags
	case len(missing) < len(stamped):
		return fmt.Errorf("incomplete build ldflags: %s not set", strings.Join(missing, ", "))
	default:
		fromBuildInfo(resolved)
	}
	if buildName != "" {
		resolved.Name = buildName
	}

	info = resolved
	return nil
}

// fromBuildInfo fills i from the toolchain-embedded build info, if any.
func fromBuildInfo(i *Info) {
	bi, ok := readBuildInfo()
	if !ok || bi == nil {
		return
	}
	i.Source = SourceBuildInfo

	if v := bi.Main.Version; v != "" && v != "(devel)" {
		i.Version = v
	} else {
		i.Version = "devel"
	}

	var dirty bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			i.Commit = s.Value
			if len(i.Commit) > 12 {
				i.Commit = i.Commit[:12]
			}
		case "vcs.time":
			i.Time = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && i.Commit != "unknown" {
		i.Commit += "-dirty"
	}
}

// GetBuildFlags returns the resolved build information. Before Initialize
// it reports the defaults.
func GetBuildFlags() Info {
	return *info
}
