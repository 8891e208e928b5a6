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

// Package cache implements the content-addressed runtime cache and its
// inter-process exclusion.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"github.com/cereda/jbundle/internal/config"
	"github.com/cereda/jbundle/internal/download"
	"github.com/cereda/jbundle/internal/jberr"
	"github.com/cereda/jbundle/internal/ui"
)

const lockPollInterval = 500 * time.Millisecond
const lockTimeout = 600 * time.Second

// ReleaseAsset carries everything needed to fetch one JDK build, as
// produced by the registry lookup (internal/adoptium).
type ReleaseAsset struct {
	download.Asset
	Version int
}

// Extractor extracts an archive at archivePath into destDir. Satisfied by
// internal/jlink's runtime unpacker in production, and by a fake in tests.
type Extractor func(archivePath, destDir string) error

// Cache manages $HOME/.jbundle/cache.
type Cache struct {
	Root      string
	Sink      ui.Sink
	Downloader *download.Downloader
	Extract   Extractor
}

// New returns a Cache rooted at root, downloading via d and extracting via
// extract.
func New(root string, sink ui.Sink, d *download.Downloader, extract Extractor) *Cache {
	if sink == nil {
		sink = ui.NoopSink{}
	}
	return &Cache{Root: root, Sink: sink, Downloader: d, Extract: extract}
}

// EnsureRuntime returns the local JDK directory for (version, target),
// downloading and extracting it if necessary. Exactly one concurrent caller
// performs extraction for a given (version, target); the rest observe the
// populated directory either via the fast path or after the lock is
// released.
func (c *Cache) EnsureRuntime(ctx context.Context, version int, target config.Target, asset ReleaseAsset) (string, error) {
	dir := c.runtimeEntryDir(version, target)

	if isValidRuntime(dir) {
		return dir, nil
	}

	lockPath := dir + ".lock"
	fl := flock.New(lockPath)

	acquired, err := fl.TryLock()
	if err != nil {
		return "", jberr.Wrap(jberr.CacheLockTimeout, err, "acquiring cache lock %s", lockPath)
	}
	if !acquired {
		c.Sink.Warn("waiting for another process to populate the runtime cache for %d-%s", version, target.String())

		lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
		defer cancel()

		acquired, err = fl.TryLockContext(lockCtx, lockPollInterval)
		if err != nil || !acquired {
			return "", jberr.CacheLockTimeoutError(version, target.String())
		}
	}
	defer fl.Unlock()

	if isValidRuntime(dir) {
		return dir, nil
	}

	tmpDir, err := os.MkdirTemp(c.Root, "rt-extract-")
	if err != nil {
		return "", jberr.Wrap(jberr.JdkDownload, err, "creating extraction temp dir")
	}
	defer os.RemoveAll(tmpDir)

	archivePath, err := c.Downloader.Download(ctx, asset.Asset)
	if err != nil {
		return "", err
	}

	if err := c.Extract(archivePath, tmpDir); err != nil {
		return "", jberr.Wrap(jberr.JdkDownload, err, "extracting %s", archivePath)
	}

	if err := os.Rename(tmpDir, dir); err != nil {
		return "", jberr.Wrap(jberr.JdkDownload, err, "installing runtime cache entry %s", dir)
	}

	return dir, nil
}

func (c *Cache) runtimeEntryDir(version int, target config.Target) string {
	return filepath.Join(c.Root, runtimeEntryName(version, target))
}

func runtimeEntryName(version int, target config.Target) string {
	return strconv.Itoa(version) + "-" + target.String()
}

func isValidRuntime(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "bin", "java"))
	return err == nil && !info.IsDir()
}

// Totals reports the cache's on-disk size and entry count, for the "info"
// subcommand.
func Totals(root string) (entries int, totalBytes int64, err error) {
	items, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	for _, item := range items {
		entries++
		size, werr := dirSize(filepath.Join(root, item.Name()))
		if werr != nil {
			continue
		}
		totalBytes += size
	}
	return entries, totalBytes, nil
}

func dirSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		sub, err := dirSize(filepath.Join(path, e.Name()))
		if err != nil {
			continue
		}
		total += sub
	}
	return total, nil
}

// Clean removes the entire cache root.
func Clean(root string) error {
	return os.RemoveAll(root)
}
