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

package jlink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cereda/jbundle/internal/jberr"
)

func fakeJlink(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	binDir := filepath.Join(dir, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	path := filepath.Join(binDir, "jlink")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return dir
}

func TestCreateRuntimeSucceeds(t *testing.T) {
	jdk := fakeJlink(t, `exit 0`)
	out := filepath.Join(t.TempDir(), "runtime")

	err := CreateRuntime(context.Background(), jdk, []string{"java.base"}, out)
	require.NoError(t, err)
}

func TestCreateRuntimeRemovesExistingOutput(t *testing.T) {
	jdk := fakeJlink(t, `exit 0`)
	out := filepath.Join(t.TempDir(), "runtime")
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale.txt"), []byte("old"), 0o644))

	err := CreateRuntime(context.Background(), jdk, []string{"java.base"}, out)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(out, "stale.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreateRuntimeFailsOnNonZeroExit(t *testing.T) {
	jdk := fakeJlink(t, `echo "bad module" >&2; exit 2`)
	out := filepath.Join(t.TempDir(), "runtime")

	err := CreateRuntime(context.Background(), jdk, []string{"java.base"}, out)
	require.Error(t, err)
	assert.True(t, jberr.Of(err, jberr.JlinkFailed))
	assert.Contains(t, err.Error(), "bad module")
}
