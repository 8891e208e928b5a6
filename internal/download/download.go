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

// Package download implements the bounded retry/backoff HTTP downloader
// with checksum verification.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/cereda/jbundle/internal/jberr"
	"github.com/cereda/jbundle/internal/ui"
)

const maxAttempts = 3
const defaultRetryAfter = 5 * time.Second

// Asset is a downloadable release artifact, opaque to everything upstream
// of the registry lookup that produced it.
type Asset struct {
	Name     string
	URL      string
	Checksum string // full lowercase hex SHA-256
	Size     int64
}

// Downloader streams Asset payloads to a cache directory, verifying their
// checksum and retrying transient failures per spec.
type Downloader struct {
	CacheDir string
	Sink     ui.Sink
	client   *retryablehttp.Client
}

// New returns a Downloader rooted at cacheDir, reporting progress to sink.
// A nil sink is replaced with ui.NoopSink.
func New(cacheDir string, sink ui.Sink) *Downloader {
	if sink == nil {
		sink = ui.NoopSink{}
	}
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = maxAttempts - 1
	client.CheckRetry = checkRetry
	client.Backoff = backoff
	return &Downloader{CacheDir: cacheDir, Sink: sink, client: client}
}

// Download ensures asset is present, verified, and returns its local path.
// The fast path reuses an already-cached, checksum-valid file; a stale file
// at that path is deleted before the retry loop begins.
func (d *Downloader) Download(ctx context.Context, asset Asset) (string, error) {
	dest := d.CacheDir + string(os.PathSeparator) + asset.Name

	if ok, err := checksumMatches(dest, asset.Checksum); err == nil && ok {
		return dest, nil
	} else {
		os.Remove(dest)
	}

	if err := os.MkdirAll(d.CacheDir, 0o755); err != nil {
		return "", jberr.Wrap(jberr.JdkDownload, err, "creating cache directory %s", d.CacheDir)
	}

	d.Sink.Stage(fmt.Sprintf("downloading %s", asset.Name))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		return "", jberr.Wrap(jberr.JdkDownload, err, "building request for %s", asset.URL)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", jberr.Wrap(jberr.JdkDownload, err, "downloading %s", asset.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", jberr.New(jberr.JdkDownload, "unexpected status %s for %s", resp.Status, asset.URL)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = asset.Size
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", jberr.Wrap(jberr.JdkDownload, err, "creating %s", dest)
	}

	hasher := sha256.New()
	writer := io.MultiWriter(out, hasher)

	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := writer.Write(buf[:n]); werr != nil {
				out.Close()
				return "", jberr.Wrap(jberr.JdkDownload, werr, "writing %s", dest)
			}
			written += int64(n)
			d.Sink.Progress(asset.Name, written, total)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			return "", jberr.Wrap(jberr.JdkDownload, readErr, "reading response body for %s", asset.URL)
		}
	}
	if err := out.Close(); err != nil {
		return "", jberr.Wrap(jberr.JdkDownload, err, "closing %s", dest)
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if actual != asset.Checksum {
		os.Remove(dest)
		return "", jberr.ChecksumMismatchError(asset.Checksum, actual)
	}

	return dest, nil
}

func checksumMatches(path, want string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, err
	}
	return hex.EncodeToString(h.Sum(nil)) == want, nil
}

// checkRetry classifies a response/error: connect/timeout/5xx are
// retryable, HTTP 429 retries honoring Retry-After, and other 4xx are
// permanent failures (no retry).
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return true, nil
	}
	if resp.StatusCode >= 500 {
		return true, nil
	}
	if resp.StatusCode >= 400 {
		return false, nil
	}
	return false, nil
}

// backoff implements 2^attemptNum second exponential backoff (1s, 2s, 4s, ...
// for attemptNum 0, 1, 2, ...), except for HTTP 429 responses which honor the
// Retry-After header (defaulting to 5s).
func backoff(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				return time.Duration(secs) * time.Second
			}
		}
		return defaultRetryAfter
	}
	return time.Duration(1<<uint(attemptNum)) * time.Second
}
