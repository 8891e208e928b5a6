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

// Package shrink implements the streaming archive rewriter that drops
// non-essential entries and recompresses survivors at maximum deflate.
package shrink

import (
	"archive/zip"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/cereda/jbundle/internal/classify"
	"github.com/cereda/jbundle/internal/jberr"
)

// registerMaxDeflate registers on zw a Deflate compressor that always writes
// at deflate level 9. archiver/v3's directory-oriented API doesn't expose
// per-entry compression level, which is why this package drives archive/zip
// directly instead.
func registerMaxDeflate(zw *zip.Writer) {
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})
}

// Result reports the outcome of a shrink operation.
type Result struct {
	Path         string
	OriginalSize int64
	ShrunkSize   int64
}

// Shrink streams src into a new archive at dst, omitting every entry for
// which classify.ShouldSkip returns true and recompressing survivors at
// deflate level 9. Directory entries are copied with default options.
//
// Any I/O or zip error aborts and returns ShrinkFailed; dst is left
// incomplete but the original archive at src is untouched by this function.
func Shrink(src, dst string) (*Result, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return nil, jberr.Wrap(jberr.ShrinkFailed, err, "cannot stat %s", src)
	}

	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, jberr.Wrap(jberr.ShrinkFailed, err, "cannot open %s", src)
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, jberr.Wrap(jberr.ShrinkFailed, err, "cannot create %s", dst)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	registerMaxDeflate(w)

	for _, entry := range r.File {
		name := entry.Name
		if classify.ShouldSkip(name) {
			continue
		}

		if entry.FileInfo().IsDir() {
			dirName := name
			if !strings.HasSuffix(dirName, "/") {
				dirName += "/"
			}
			if _, err := w.Create(dirName); err != nil {
				return nil, jberr.Wrap(jberr.ShrinkFailed, err, "writing directory entry %s", name)
			}
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, jberr.Wrap(jberr.ShrinkFailed, err, "reading entry %s", name)
		}

		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, jberr.Wrap(jberr.ShrinkFailed, err, "reading entry %s", name)
		}

		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: entry.Modified,
		}
		header.SetMode(entry.Mode())

		ew, err := w.CreateHeader(header)
		if err != nil {
			return nil, jberr.Wrap(jberr.ShrinkFailed, err, "writing entry %s", name)
		}
		if _, err := ew.Write(data); err != nil {
			return nil, jberr.Wrap(jberr.ShrinkFailed, err, "writing entry %s", name)
		}
	}

	if err := w.Close(); err != nil {
		return nil, jberr.Wrap(jberr.ShrinkFailed, err, "finalizing %s", dst)
	}

	dstInfo, err := os.Stat(dst)
	if err != nil {
		return nil, jberr.Wrap(jberr.ShrinkFailed, err, "cannot stat %s", dst)
	}

	return &Result{
		Path:         dst,
		OriginalSize: srcInfo.Size(),
		ShrunkSize:   dstInfo.Size(),
	}, nil
}
