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
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"

	"github.com/cereda/jbundle/internal/jberr"
)

// ExtractRuntimeArchive unpacks a downloaded JDK distribution archive
// (.tar.gz or .zip) into destDir. Adoptium/AdoptOpenJDK archives wrap their
// contents in a single top-level directory (e.g. "jdk-21.0.1+12/"), the way
// a fixed suffix appended to the returned path would be fragile across
// vendors and versions, so the
// wrapping directory's contents are instead flattened directly into
// destDir, so destDir/bin/java exists regardless of the archive's internal
// naming.
func ExtractRuntimeArchive(archivePath, destDir string) error {
	staging := destDir + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return err
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	if err := archiver.Unarchive(archivePath, staging); err != nil {
		return jberr.Wrap(jberr.JdkDownload, err, "unarchiving %s", archivePath)
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	source := staging
	if len(entries) == 1 && entries[0].IsDir() {
		source = filepath.Join(staging, entries[0].Name())
		entries, err = os.ReadDir(source)
		if err != nil {
			return err
		}
	}

	for _, e := range entries {
		if err := os.Rename(filepath.Join(source, e.Name()), filepath.Join(destDir, e.Name())); err != nil {
			return err
		}
	}

	return nil
}
