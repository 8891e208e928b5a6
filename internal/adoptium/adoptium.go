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

// Package adoptium resolves JDK release metadata from the Adoptium API and
// compares release version strings. Lookup is used by runtime provisioning;
// CompareRelease has no caller inside jbundle.
package adoptium

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/cereda/jbundle/internal/cache"
	"github.com/cereda/jbundle/internal/config"
	"github.com/cereda/jbundle/internal/download"
	"github.com/cereda/jbundle/internal/jberr"
)

// apiBase is a var, not a const, so tests can redirect lookups to a fake
// server.
var apiBase = "https://api.adoptium.net/v3/assets/feature_releases"

// release mirrors the subset of the Adoptium "Release" schema jbundle needs.
type release struct {
	Binaries []binary `json:"binaries"`
}

type binary struct {
	Architecture   string `json:"architecture"`
	Implementation string `json:"jvm_impl"`
	OS             string `json:"os"`
	Package        pkg    `json:"package"`
}

type pkg struct {
	Name     string `json:"name"`
	Link     string `json:"link"`
	Checksum string `json:"checksum"`
	Size     int64  `json:"size"`
}

// Registry looks up release metadata, caching results per process since the
// catalog is effectively immutable for a given (version, target).
type Registry struct {
	client *retryablehttp.Client

	mu    sync.Mutex
	cache map[string]*binary
}

// NewRegistry returns a Registry backed by its own retryablehttp client.
func NewRegistry() *Registry {
	client := retryablehttp.NewClient()
	client.Logger = nil
	return &Registry{client: client, cache: make(map[string]*binary)}
}

// Lookup resolves the GA Temurin release asset for version on target.
func (r *Registry) Lookup(ctx context.Context, version int, target config.Target) (cache.ReleaseAsset, error) {
	key := strconv.Itoa(version) + "-" + target.String()

	r.mu.Lock()
	if b, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return toAsset(b, version), nil
	}
	r.mu.Unlock()

	url := apiBase + "/" + strconv.Itoa(version) +
		"/ga?architecture=" + target.AdoptiumArch() +
		"&heap_size=normal&image_type=jdk&jvm_impl=hotspot&os=" + target.AdoptiumOS() +
		"&page=0&page_size=1&project=jdk&sort_method=DEFAULT&sort_order=DESC&vendor=eclipse"

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return cache.ReleaseAsset{}, jberr.Wrap(jberr.JdkDownload, err, "building Adoptium lookup request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return cache.ReleaseAsset{}, jberr.Wrap(jberr.JdkDownload, err, "querying Adoptium for JDK %d (%s)", version, target.String())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cache.ReleaseAsset{}, jberr.New(jberr.JdkDownload, "Adoptium returned status %s for JDK %d (%s)", resp.Status, version, target.String())
	}

	var releases []release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return cache.ReleaseAsset{}, jberr.Wrap(jberr.JdkDownload, err, "decoding Adoptium response")
	}

	if len(releases) == 0 || len(releases[0].Binaries) == 0 {
		return cache.ReleaseAsset{}, jberr.New(jberr.JdkDownload, "no Adoptium release found for JDK %d (%s)", version, target.String())
	}

	b := &releases[0].Binaries[0]

	r.mu.Lock()
	r.cache[key] = b
	r.mu.Unlock()

	return toAsset(b, version), nil
}

func toAsset(b *binary, version int) cache.ReleaseAsset {
	return cache.ReleaseAsset{
		Asset: download.Asset{
			Name:     b.Package.Name,
			URL:      b.Package.Link,
			Checksum: b.Package.Checksum,
			Size:     b.Package.Size,
		},
		Version: version,
	}
}

// CompareRelease returns 1 if release1 is newer than release2, -1 if older,
// and 0 if identical, comparing the dotted version before "+" (ignoring a
// "jdk-" prefix) and then the dotted build number after it.
func CompareRelease(release1, release2 string) int {
	v1, b1, _ := strings.Cut(strings.TrimPrefix(release1, "jdk-"), "+")
	v2, b2, _ := strings.Cut(strings.TrimPrefix(release2, "jdk-"), "+")

	for _, pair := range [][2]string{{v1, v2}, {b1, b2}} {
		x1 := strings.Split(pair[0], ".")
		x2 := strings.Split(pair[1], ".")

		for i := len(x2) - len(x1); i > 0; i-- {
			x1 = append(x1, "0")
		}
		for i := len(x1) - len(x2); i > 0; i-- {
			x2 = append(x2, "0")
		}

		for i := range x1 {
			y1, _ := strconv.Atoi(x1[i])
			y2, _ := strconv.Atoi(x2[i])
			if y1 > y2 {
				return 1
			} else if y1 < y2 {
				return -1
			}
		}
	}

	return 0
}
