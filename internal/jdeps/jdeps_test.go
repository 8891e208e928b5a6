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

package jdeps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cereda/jbundle/internal/config"
)

// fakeJdeps writes a tiny shell script standing in for bin/jdeps so tests
// don't depend on a real JDK being installed.
func fakeJdeps(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	binDir := filepath.Join(dir, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	path := filepath.Join(binDir, "jdeps")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return dir
}

func TestDetectModulesParsesOutput(t *testing.T) {
	jdk := fakeJdeps(t, `echo "java.base,java.sql"`)
	modules, err := DetectModules(context.Background(), jdk, "app.jar", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"java.base", "java.sql"}, modules)
}

func TestDetectModulesFallsBackOnNonZeroExit(t *testing.T) {
	jdk := fakeJdeps(t, `echo "boom" >&2; exit 1`)
	modules, err := DetectModules(context.Background(), jdk, "app.jar", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, config.DefaultModules, modules)
}

func TestDetectModulesFallsBackOnEmptyOutput(t *testing.T) {
	jdk := fakeJdeps(t, `true`)
	modules, err := DetectModules(context.Background(), jdk, "app.jar", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, config.DefaultModules, modules)
}

func TestDetectModulesUnionsExtraModules(t *testing.T) {
	jdk := fakeJdeps(t, `echo "java.base"`)
	modules, err := DetectModules(context.Background(), jdk, "app.jar", []string{"java.desktop"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"java.base", "java.desktop"}, modules)
}

func TestDetectModulesUnionDeduplicates(t *testing.T) {
	jdk := fakeJdeps(t, `echo "java.base,java.sql"`)
	modules, err := DetectModules(context.Background(), jdk, "app.jar", []string{"java.sql"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"java.base", "java.sql"}, modules)
}
