// Package version reports the motinbox build version.
package version

import "runtime/debug"

// Version is set at build time with -ldflags "-X .../version.Version=v1.2.3".
var Version = "development"

// Commit is the git commit hash, set at build time like Version.
var Commit = "unknown"

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// String returns the version with the commit appended when known. A binary
// installed with `go install module@version` carries its module version in
// the build info, which is used when Version was not set.
func String() string {
	v, commit := Version, Commit
	if v == "development" || commit == "unknown" {
		if info, ok := readBuildInfo(); ok {
			if v == "development" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				v = info.Main.Version
			}
			if commit == "unknown" {
				commit = vcsRevision(info)
			}
		}
	}
	if commit != "unknown" && commit != "" {
		return v + "+" + commit
	}
	return v
}

func vcsRevision(info *debug.BuildInfo) string {
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 7 {
				return s.Value[:7]
			}
			return s.Value
		}
	}
	return "unknown"
}
