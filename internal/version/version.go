// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version provides a single location to house the version information
// for plmd.
package version

import (
	"fmt"
	"regexp"
	"runtime/debug"
)

// semverRE is a regular expression used to validate a semantic version string
// without build metadata.
var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(?:-([0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*))?$`)

// Version is the application version per the semantic versioning 2.0.0 spec
// (https://semver.org/).
//
// It is defined as a variable so it can be overridden during the build
// process with:
// '-ldflags "-X github.com/palladium-coin/plmd/internal/version.Version=fullsemver"'
// if needed.
var Version = "0.1.0-pre"

// vcsCommitID returns the abbreviated commit the binary was built from when
// the build information carries it.
func vcsCommitID() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var vcs, revision string
	for _, bs := range bi.Settings {
		switch bs.Key {
		case "vcs":
			vcs = bs.Value
		case "vcs.revision":
			revision = bs.Value
		}
	}
	if vcs == "" {
		return ""
	}
	if vcs == "git" && len(revision) > 9 {
		revision = revision[:9]
	}
	return revision
}

// withCommit returns the provided version with the provided commit appended as
// build metadata.  The version is returned unchanged when there is no commit.
func withCommit(version, commit string) string {
	if commit == "" {
		return version
	}
	return version + "+" + commit
}

// Check returns an error when the provided version is not a semantic version
// without build metadata.
func Check(version string) error {
	if !semverRE.MatchString(version) {
		return fmt.Errorf("malformed version string %q: does not conform to "+
			"semver specification", version)
	}
	return nil
}

// String returns the application version along with the commit it was built
// from when known.
func String() string {
	return withCommit(Version, vcsCommitID())
}
