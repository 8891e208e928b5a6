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

// Package jlink links a custom runtime image from a JDK's module set.
package jlink

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cereda/jbundle/internal/jberr"
	"github.com/cereda/jbundle/internal/procrun"
)

// CreateRuntime runs the JDK's image linker against jdkPath, producing a
// stripped, compressed runtime tree at outputDir containing exactly the
// given modules. outputDir is removed first if it already exists.
func CreateRuntime(ctx context.Context, jdkPath string, modules []string, outputDir string) error {
	jlinkBin := filepath.Join(jdkPath, "bin", "jlink")

	if _, err := os.Stat(outputDir); err == nil {
		if err := os.RemoveAll(outputDir); err != nil {
			return jberr.Wrap(jberr.JlinkFailed, err, "removing existing output directory %s", outputDir)
		}
	}

	args := []string{
		"--add-modules", strings.Join(modules, ","),
		"--strip-debug",
		"--no-man-pages",
		"--no-header-files",
		"--compress=zip-6",
		"--output", outputDir,
	}

	result, err := procrun.Run(ctx, procrun.Invocation{Command: jlinkBin, Args: args})
	if err != nil {
		return jberr.Wrap(jberr.JlinkFailed, err, "failed to run jlink")
	}

	if result.ExitCode != 0 {
		return jberr.New(jberr.JlinkFailed, "jlink exited with status %d\nstdout:\n%s\nstderr:\n%s",
			result.ExitCode, result.Stdout, result.Stderr)
	}

	return nil
}
