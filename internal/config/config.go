// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds jbundle's data model: targets, build systems, JVM
// profiles, and the BuildConfig assembled from CLI flags and jbundle.toml.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/cereda/jbundle/internal/jberr"
)

// OS is the target operating system, restricted to the two supported targets.
type OS int

const (
	Linux OS = iota
	MacOS
)

func (o OS) String() string {
	if o == MacOS {
		return "macos"
	}
	return "linux"
}

// Arch is the target CPU architecture.
type Arch int

const (
	X86_64 Arch = iota
	Aarch64
)

func (a Arch) String() string {
	if a == Aarch64 {
		return "aarch64"
	}
	return "x86_64"
}

// Target is an (OS, Arch) pair. Its cache-key serialization is "{os}-{arch}".
type Target struct {
	OS   OS
	Arch Arch
}

// String renders the cache-key form, e.g. "linux-x86_64".
func (t Target) String() string {
	return t.OS.String() + "-" + t.Arch.String()
}

// CurrentTarget returns the host's target.
func CurrentTarget() Target {
	t := Target{OS: Linux, Arch: X86_64}
	if runtime.GOOS == "darwin" {
		t.OS = MacOS
	}
	if runtime.GOARCH == "arm64" {
		t.Arch = Aarch64
	}
	return t
}

// ParseTarget parses one of the four recognized target triples.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "linux-x64":
		return Target{OS: Linux, Arch: X86_64}, nil
	case "linux-aarch64":
		return Target{OS: Linux, Arch: Aarch64}, nil
	case "macos-x64":
		return Target{OS: MacOS, Arch: X86_64}, nil
	case "macos-aarch64":
		return Target{OS: MacOS, Arch: Aarch64}, nil
	default:
		return Target{}, jberr.New(jberr.InvalidTarget, "invalid target %q (expected linux-x64, linux-aarch64, macos-x64, macos-aarch64)", s)
	}
}

// AdoptiumOS maps the target to the os query value used by the Adoptium API.
func (t Target) AdoptiumOS() string {
	if t.OS == MacOS {
		return "mac"
	}
	return "linux"
}

// AdoptiumArch maps the target to the architecture query value used by the
// Adoptium API.
func (t Target) AdoptiumArch() string {
	if t.Arch == Aarch64 {
		return "aarch64"
	}
	return "x64"
}

// BuildSystem is the closed set of recognized JVM build tools.
type BuildSystem int

const (
	DepsEdn BuildSystem = iota
	Leiningen
	Maven
	Gradle
)

func (b BuildSystem) String() string {
	switch b {
	case DepsEdn:
		return "deps.edn"
	case Leiningen:
		return "leiningen"
	case Maven:
		return "maven"
	case Gradle:
		return "gradle"
	default:
		return "unknown"
	}
}

// JvmProfile selects the baked-in launcher JVM flags.
type JvmProfile int

const (
	ProfileServer JvmProfile = iota
	ProfileCli
)

// Flags returns the profile's baked-in JVM flags.
func (p JvmProfile) Flags() []string {
	if p == ProfileCli {
		return []string{"-XX:+TieredCompilation", "-XX:TieredStopAtLevel=1", "-XX:+UseSerialGC"}
	}
	return nil
}

// ParseJvmProfile parses "cli" or "server".
func ParseJvmProfile(s string) (JvmProfile, error) {
	switch s {
	case "cli":
		return ProfileCli, nil
	case "server", "":
		return ProfileServer, nil
	default:
		return 0, jberr.New(jberr.InvalidProfile, "invalid JVM profile %q (expected: cli, server)", s)
	}
}

// Subproject describes one module of a multi-project Gradle build.
type Subproject struct {
	Name           string
	Path           string
	HasApplication bool
	MainClass      string
	AddModules     []string
}

// DetectedBuild is the tagged result of build-system detection.
type DetectedBuild struct {
	// Simple is set when the project uses a single, non-multi-project build
	// system. MultiProject subprojects is nil in this case.
	Simple BuildSystem
	// IsMultiProject distinguishes the two variants (Go has no tagged union,
	// so a bool discriminant stands in for it). The multi-project variant
	// carries Simple set to Gradle.
	IsMultiProject bool
	ProjectRoot    string
	Subprojects    []Subproject
}

// BuildConfig is the immutable, fully-resolved configuration for one build
// invocation, produced by merging jbundle.toml with CLI flags (CLI wins).
type BuildConfig struct {
	Input                string
	Output               string
	JavaVersion          int
	JavaVersionExplicit  bool
	Target               Target
	JvmArgs              []string
	Shrink               bool
	Profile              JvmProfile
	AppCDS               bool
	CRaC                 bool
	GradleProject        string
	GradleAll            bool
	ModulesOverride      []string
	JlinkRuntimePath     string
	CompactBanner        bool
	Verbose              bool
}

// CacheRoot returns $HOME/.jbundle/cache, creating no directories.
func CacheRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", jberr.Wrap(jberr.BuildFailed, err, "cannot determine home directory")
	}
	return filepath.Join(home, ".jbundle", "cache"), nil
}

// DefaultModules is the fallback module set used when jdeps fails or
// produces no output.
var DefaultModules = []string{
	"java.base", "java.logging", "java.sql", "java.naming",
	"java.management", "java.instrument", "java.desktop", "java.xml", "java.net.http",
}
