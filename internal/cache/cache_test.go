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

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cereda/jbundle/internal/config"
	"github.com/cereda/jbundle/internal/download"
	"github.com/cereda/jbundle/internal/ui"
)

func checksumOf(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

func writeFakeJava(dir string) {
	os.MkdirAll(filepath.Join(dir, "bin"), 0o755)
	os.WriteFile(filepath.Join(dir, "bin", "java"), []byte("#!/bin/sh\n"), 0o755)
}

func TestEnsureRuntimeFastPath(t *testing.T) {
	root := t.TempDir()
	target := config.Target{OS: config.Linux, Arch: config.X86_64}
	writeFakeJava(filepath.Join(root, "21-linux-x86_64"))

	c := New(root, ui.NoopSink{}, nil, nil)
	dir, err := c.EnsureRuntime(context.Background(), 21, target, ReleaseAsset{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "21-linux-x86_64"), dir)
}

func TestEnsureRuntimeDownloadsAndExtracts(t *testing.T) {
	content := []byte("fake jdk tar bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	root := t.TempDir()
	target := config.Target{OS: config.Linux, Arch: config.X86_64}
	d := download.New(root, ui.NoopSink{})

	var extractedInto string
	extract := func(archivePath, destDir string) error {
		extractedInto = destDir
		writeFakeJava(destDir)
		return nil
	}

	c := New(root, ui.NoopSink{}, d, extract)
	asset := ReleaseAsset{
		Asset:   download.Asset{Name: "jdk21.tar.gz", URL: srv.URL, Checksum: checksumOf(content)},
		Version: 21,
	}

	dir, err := c.EnsureRuntime(context.Background(), 21, target, asset)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "21-linux-x86_64"), dir)
	assert.NotEmpty(t, extractedInto)
}

func TestTotalsOnEmptyCache(t *testing.T) {
	root := t.TempDir()
	entries, total, err := Totals(filepath.Join(root, "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, 0, entries)
	assert.Equal(t, int64(0), total)
}

func TestTotalsCountsEntries(t *testing.T) {
	root := t.TempDir()
	writeFakeJava(filepath.Join(root, "21-linux-x86_64"))
	writeFakeJava(filepath.Join(root, "17-linux-x86_64"))

	entries, total, err := Totals(root)
	require.NoError(t, err)
	assert.Equal(t, 2, entries)
	assert.Greater(t, total, int64(0))
}

func TestCleanRemovesCacheRoot(t *testing.T) {
	root := t.TempDir()
	writeFakeJava(filepath.Join(root, "21-linux-x86_64"))

	require.NoError(t, Clean(root))
	_, err := os.Stat(root)
	assert.True(t, os.IsNotExist(err))
}
