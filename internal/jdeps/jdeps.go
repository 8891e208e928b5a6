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

// Package jdeps detects the JDK modules an application archive depends on,
// using the JDK's own module analyzer.
package jdeps

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cereda/jbundle/internal/config"
	"github.com/cereda/jbundle/internal/procrun"
)

// DetectModules runs jdeps against jarPath using the JDK rooted at jdkPath
// and returns the required modules. On any non-zero exit or empty output it
// falls back to config.DefaultModules. extra (e.g. from a sub-project
// config) is unioned in regardless of which path was taken.
func DetectModules(ctx context.Context, jdkPath, jarPath string, extra []string) ([]string, error) {
	jdeps := jdkBin(jdkPath, "jdeps")

	result, err := procrun.Run(ctx, procrun.Invocation{
		Command: jdeps,
		Args:    []string{"--print-module-deps", "--ignore-missing-deps", "--multi-release", "base", jarPath},
	})

	var modules []string
	if err != nil || result.ExitCode != 0 {
		modules = append(modules, config.DefaultModules...)
	} else {
		out := strings.TrimSpace(string(result.Stdout))
		if out == "" {
			modules = append(modules, config.DefaultModules...)
		} else {
			modules = strings.Split(out, ",")
		}
	}

	return union(modules, extra), nil
}

func union(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	var out []string
	for _, m := range base {
		if m != "" && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, m := range extra {
		if m != "" && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

func jdkBin(jdkPath, name string) string {
	return filepath.Join(jdkPath, "bin", name)
}
