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

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/cereda/jbundle/internal/jberr"
)

// FileConfig mirrors the recognized jbundle.toml options.
// Unknown keys are rejected by toml.Decoder.DisallowUnknownFields, matching
// "Unknown fields are rejected."
type FileConfig struct {
	Input         string   `toml:"input"`
	Output        string   `toml:"output"`
	JavaVersion   int      `toml:"java-version"`
	Target        string   `toml:"target"`
	JvmArgs       []string `toml:"jvm-args"`
	Shrink        bool     `toml:"shrink"`
	Profile       string   `toml:"profile"`
	NoAppCDS      bool     `toml:"no-appcds"`
	CRaC          bool     `toml:"crac"`
	GradleProject string   `toml:"gradle-project"`
	GradleAll     bool     `toml:"all"`
	Modules       string   `toml:"modules"`
	JlinkRuntime  string   `toml:"jlink-runtime"`
	CompactBanner bool     `toml:"compact-banner"`
	Verbose       bool     `toml:"verbose"`
}

// LoadFileConfig reads jbundle.toml from projectDir, if present. A missing
// file is not an error; it yields a zero-value FileConfig. The same holds
// when projectDir is an archive file rather than a directory.
func LoadFileConfig(projectDir string) (*FileConfig, error) {
	if info, err := os.Stat(projectDir); err == nil && !info.IsDir() {
		return &FileConfig{}, nil
	}
	path := filepath.Join(projectDir, "jbundle.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, jberr.Wrap(jberr.BuildFailed, err, "reading %s", path)
	}

	dec := toml.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()

	var fc FileConfig
	if err := dec.Decode(&fc); err != nil {
		return nil, jberr.Wrap(jberr.BuildFailed, err, "parsing %s", path)
	}
	return &fc, nil
}

// CLIOverrides holds the subset of flags the CLI layer explicitly set;
// zero values mean "not provided, fall back to file config or default."
type CLIOverrides struct {
	Input               string
	InputSet            bool
	Output              string
	OutputSet           bool
	JavaVersion         int
	JavaVersionSet      bool
	Target              string
	TargetSet           bool
	JvmArgs             []string
	Shrink              bool
	ShrinkSet           bool
	Profile             string
	ProfileSet          bool
	NoAppCDS            bool
	NoAppCDSSet         bool
	CRaC                bool
	CRaCSet             bool
	GradleProject       string
	GradleAll           bool
	Modules             string
	ModulesSet          bool
	JlinkRuntime        string
	JlinkRuntimeSet     bool
	CompactBanner       bool
	Verbose             bool
}

// Merge combines a FileConfig with CLI overrides; CLI always wins, matching
// "A config file jbundle.toml ... may pre-set any build option; CLI wins."
func Merge(fc *FileConfig, cli CLIOverrides) (*BuildConfig, error) {
	bc := &BuildConfig{
		Input:         "." ,
		Output:        filepath.Join("dist", "app"),
		JavaVersion:   0,
		Target:        CurrentTarget(),
		Shrink:        fc.Shrink,
		AppCDS:        !fc.NoAppCDS,
		CRaC:          fc.CRaC,
		GradleProject: fc.GradleProject,
		GradleAll:     fc.GradleAll,
		JlinkRuntimePath: fc.JlinkRuntime,
		CompactBanner: fc.CompactBanner,
		Verbose:       fc.Verbose,
		JvmArgs:       append([]string{}, fc.JvmArgs...),
	}

	if fc.Input != "" {
		bc.Input = fc.Input
	}
	if fc.Output != "" {
		bc.Output = fc.Output
	}
	if fc.JavaVersion != 0 {
		bc.JavaVersion = fc.JavaVersion
		bc.JavaVersionExplicit = true
	}
	if fc.Target != "" {
		t, err := ParseTarget(fc.Target)
		if err != nil {
			return nil, err
		}
		bc.Target = t
	}
	if fc.Profile != "" {
		p, err := ParseJvmProfile(fc.Profile)
		if err != nil {
			return nil, err
		}
		bc.Profile = p
	}
	if fc.Modules != "" {
		bc.ModulesOverride = strings.Split(fc.Modules, ",")
	}

	if cli.InputSet {
		bc.Input = cli.Input
	}
	if cli.OutputSet {
		bc.Output = cli.Output
	}
	if cli.JavaVersionSet {
		bc.JavaVersion = cli.JavaVersion
		bc.JavaVersionExplicit = true
	}
	if cli.TargetSet {
		t, err := ParseTarget(cli.Target)
		if err != nil {
			return nil, err
		}
		bc.Target = t
	}
	if len(cli.JvmArgs) > 0 {
		bc.JvmArgs = append(bc.JvmArgs, cli.JvmArgs...)
	}
	if cli.ShrinkSet {
		bc.Shrink = cli.Shrink
	}
	if cli.ProfileSet {
		p, err := ParseJvmProfile(cli.Profile)
		if err != nil {
			return nil, err
		}
		bc.Profile = p
	}
	if cli.NoAppCDSSet {
		bc.AppCDS = !cli.NoAppCDS
	}
	if cli.CRaCSet {
		bc.CRaC = cli.CRaC
	}
	if cli.GradleProject != "" {
		bc.GradleProject = cli.GradleProject
	}
	if cli.GradleAll {
		bc.GradleAll = true
	}
	if cli.ModulesSet {
		bc.ModulesOverride = strings.Split(cli.Modules, ",")
	}
	if cli.JlinkRuntimeSet {
		bc.JlinkRuntimePath = cli.JlinkRuntime
	}
	if cli.CompactBanner {
		bc.CompactBanner = true
	}
	if cli.Verbose {
		bc.Verbose = true
	}

	return bc, nil
}
