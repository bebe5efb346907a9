package main

import "runtime/debug"

// releaseVersion is set with -ldflags "-X main.releaseVersion=..." for release builds.
var releaseVersion string

var version = buildVersion(releaseVersion, debug.ReadBuildInfo)

func buildVersion(release string, readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if release != "" {
		return release
	}

	info, ok := readBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if dirty {
		return revision + "-dirty"
	}
	return revision
}
