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

package download

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

	"github.com/cereda/jbundle/internal/jberr"
	"github.com/cereda/jbundle/internal/ui"
)

func checksumOf(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

func TestDownloadSucceedsAndVerifiesChecksum(t *testing.T) {
	content := []byte("fake jdk archive bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := New(dir, ui.NoopSink{})

	asset := Asset{Name: "jdk.tar.gz", URL: srv.URL, Checksum: checksumOf(content), Size: int64(len(content))}
	path, err := d.Download(context.Background(), asset)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jdk.tar.gz"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDownloadFastPathReusesCachedFile(t *testing.T) {
	content := []byte("cached bytes")
	dir := t.TempDir()
	path := filepath.Join(dir, "jdk.tar.gz")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("should not be fetched"))
	}))
	defer srv.Close()

	d := New(dir, ui.NoopSink{})
	asset := Asset{Name: "jdk.tar.gz", URL: srv.URL, Checksum: checksumOf(content)}

	got, err := d.Download(context.Background(), asset)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, 0, calls)
}

func TestDownloadChecksumMismatchIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("wrong content"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := New(dir, ui.NoopSink{})
	asset := Asset{Name: "jdk.tar.gz", URL: srv.URL, Checksum: checksumOf([]byte("expected content"))}

	_, err := d.Download(context.Background(), asset)
	require.Error(t, err)
	assert.True(t, jberr.Of(err, jberr.ChecksumMismatch))
	assert.Equal(t, 1, calls)

	_, statErr := os.Stat(filepath.Join(dir, "jdk.tar.gz"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadPermanentFailureIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := New(dir, ui.NoopSink{})
	asset := Asset{Name: "missing.tar.gz", URL: srv.URL, Checksum: "deadbeef"}

	_, err := d.Download(context.Background(), asset)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDownloadRetriesOn5xxThenSucceeds(t *testing.T) {
	content := []byte("eventually ok")
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(content)
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := New(dir, ui.NoopSink{})
	asset := Asset{Name: "jdk.tar.gz", URL: srv.URL, Checksum: checksumOf(content)}

	path, err := d.Download(context.Background(), asset)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 2)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}
