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

// Package classver probes an archive's class files for the maximum JVM
// class file major version and resolves it against a configured Java
// version.
package classver

import (
	"archive/zip"
	"encoding/binary"
	"io"
	"strings"

	"github.com/cereda/jbundle/internal/jberr"
)

const maxEntriesScanned = 200
const classMagic = 0xCAFEBABE
const majorVersionOffset = 44 // language_version = major - 44

// Probe identifies the class file with the highest major version seen by
// MaxLanguageVersion, carrying both the raw classfile major version and the
// derived language version so error messages can report either.
type Probe struct {
	LangVersion int
	Major       int
	ClassFile   string
}

// MaxLanguageVersion scans at most 200 .class entries (excluding
// META-INF/versions/) in the archive at path and returns the class file
// with the highest major version found, or (Probe{}, false) if no valid
// class file was seen.
func MaxLanguageVersion(path string) (Probe, bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return Probe{}, false, jberr.Wrap(jberr.BuildFailed, err, "opening %s for class-version probe", path)
	}
	defer r.Close()

	found := false
	var max Probe
	scanned := 0

	for _, entry := range r.File {
		if scanned >= maxEntriesScanned {
			break
		}
		if !strings.HasSuffix(entry.Name, ".class") {
			continue
		}
		if strings.HasPrefix(entry.Name, "META-INF/versions/") {
			continue
		}
		scanned++

		major, ok, err := readMajorVersion(entry)
		if err != nil {
			continue
		}
		if !ok {
			continue
		}
		if !found || major > max.Major {
			max = Probe{LangVersion: major - majorVersionOffset, Major: major, ClassFile: entry.Name}
			found = true
		}
	}

	return max, found, nil
}

func readMajorVersion(entry *zip.File) (int, bool, error) {
	rc, err := entry.Open()
	if err != nil {
		return 0, false, err
	}
	defer rc.Close()

	header := make([]byte, 8)
	if _, err := io.ReadFull(rc, header); err != nil {
		return 0, false, err
	}

	magic := binary.BigEndian.Uint32(header[0:4])
	if magic != classMagic {
		return 0, false, nil
	}

	major := binary.BigEndian.Uint16(header[6:8])
	return int(major), true, nil
}

// Resolve reconciles a probed max class version against a configured
// version and its explicit flag.
//
//   - no class found            -> configured
//   - max <= configured          -> configured
//   - max > configured, explicit -> JavaVersionMismatch
//   - max > configured, implicit -> max (caller should log an info message)
func Resolve(probe Probe, found bool, configured int, explicit bool) (int, error) {
	if !found || probe.LangVersion <= configured {
		return configured, nil
	}
	if explicit {
		return 0, jberr.JavaVersionMismatchError(probe.LangVersion, configured, probe.Major, probe.ClassFile)
	}
	return probe.LangVersion, nil
}
