// This file is part of Gohunk.
//
// Gohunk is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gohunk is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gohunk.  If not, see <https://www.gnu.org/licenses/>.

package version

import (
	"fmt"
	"runtime/debug"
)

// number is set with -ldflags "-X" for release builds
var number string

// Build describes how the running executable was built.
type Build struct {
	// Number is empty unless the executable is a numbered release
	Number string

	// Revision is empty if there is no vcs information
	Revision string
	Modified bool

	GoVersion string
}

// Release returns true if the build is a numbered release.
func (b Build) Release() bool {
	return b.Number != ""
}

// Version is the release number, "unreleased" for builds from a vcs checkout
// or "local" when there is no vcs information.
func (b Build) Version() string {
	if b.Number != "" {
		return b.Number
	}
	if b.Revision != "" {
		return "unreleased"
	}
	return "local"
}

func (b Build) String() string {
	rev := b.Revision
	if rev == "" {
		rev = "no revision information"
	} else if b.Modified {
		rev = fmt.Sprintf("%s+dirty", rev)
	}
	if b.GoVersion == "" {
		return fmt.Sprintf("%s (%s)", b.Version(), rev)
	}
	return fmt.Sprintf("%s (%s, %s)", b.Version(), rev, b.GoVersion)
}

// Current returns the build information of the running executable.
func Current() Build {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info, number)
}

func fromBuildInfo(info *debug.BuildInfo, number string) Build {
	b := Build{Number: number}
	if info == nil {
		return b
	}

	b.GoVersion = info.GoVersion
	for _, v := range info.Settings {
		switch v.Key {
		case "vcs.revision":
			b.Revision = v.Value
		case "vcs.modified":
			b.Modified = v.Value == "true"
		}
	}
	return b
}
