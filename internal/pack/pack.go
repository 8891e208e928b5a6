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

// Package pack assembles a runtime tree, an app archive, and an optional
// checkpoint into a single self-extracting executable.
package pack

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"

	"github.com/cereda/jbundle/internal/config"
	"github.com/cereda/jbundle/internal/hash"
	"github.com/cereda/jbundle/internal/jberr"
	"github.com/cereda/jbundle/internal/stub"
)

// Inputs are the fully-prepared artifacts the packer concatenates into one
// executable.
type Inputs struct {
	RuntimeDir     string // tree produced by internal/jlink
	AppArchivePath string // uncompressed app archive (jar) on disk
	CheckpointPath string // optional: tar.gz produced by internal/crac; "" if absent
	OutputPath     string
	WorkDir        string // scratch directory for intermediate region files

	Profile       config.JvmProfile
	JvmArgs       []string
	AppCDS        bool
	JavaVersion   int
	CompactBanner bool
}

// Pack produces the final self-extracting executable at in.OutputPath.
func Pack(in Inputs) error {
	if info, err := os.Stat(in.OutputPath); err == nil && info.IsDir() {
		return jberr.New(jberr.BuildFailed, "output path %s is an existing directory", in.OutputPath)
	}

	runtimeTarGz := filepath.Join(in.WorkDir, "runtime.tar.gz")
	if err := archiveRuntime(in.RuntimeDir, runtimeTarGz); err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "archiving runtime tree")
	}

	appJarGz := filepath.Join(in.WorkDir, "app.jar.gz")
	if err := gzipFile(in.AppArchivePath, appJarGz); err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "compressing app archive")
	}

	runtimeHash, err := hash.ContentHash(runtimeTarGz)
	if err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "hashing %s", runtimeTarGz)
	}
	appHash, err := hash.ContentHash(in.AppArchivePath)
	if err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "hashing %s", in.AppArchivePath)
	}

	runtimeSize, err := fileSize(runtimeTarGz)
	if err != nil {
		return err
	}
	appSize, err := fileSize(appJarGz)
	if err != nil {
		return err
	}

	var cracHash string
	var cracSize int64
	if in.CheckpointPath != "" {
		cracHash, err = hash.ContentHash(in.CheckpointPath)
		if err != nil {
			return jberr.Wrap(jberr.BuildFailed, err, "hashing %s", in.CheckpointPath)
		}
		cracSize, err = fileSize(in.CheckpointPath)
		if err != nil {
			return err
		}
	}

	rendered := stub.Generate(stub.Params{
		RuntimeHash:   runtimeHash,
		RuntimeSize:   runtimeSize,
		AppHash:       appHash,
		AppSize:       appSize,
		CracHash:      cracHash,
		CracSize:      cracSize,
		Profile:       in.Profile,
		JvmArgs:       in.JvmArgs,
		AppCDS:        in.AppCDS,
		JavaVersion:   in.JavaVersion,
		CompactBanner: in.CompactBanner,
	})
	finalized := stub.Finalize(rendered)

	out, err := os.OpenFile(in.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "creating output file %s", in.OutputPath)
	}
	defer out.Close()

	if _, err := out.WriteString(finalized); err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "writing stub")
	}

	for _, region := range []string{runtimeTarGz, appJarGz, in.CheckpointPath} {
		if region == "" {
			continue
		}
		if err := streamAppend(out, region); err != nil {
			return jberr.Wrap(jberr.BuildFailed, err, "appending %s", region)
		}
	}

	if err := out.Chmod(0o755); err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "setting executable permission on %s", in.OutputPath)
	}

	return nil
}

// archiveRuntime tar-gzips the *contents* of runtimeDir (bin/, lib/, ...)
// rather than the directory itself, so the stub's "tar xzf -" extracts
// directly into its target without an extra wrapping path component.
func archiveRuntime(runtimeDir, dest string) error {
	entries, err := os.ReadDir(runtimeDir)
	if err != nil {
		return err
	}
	sources := make([]string, 0, len(entries))
	for _, e := range entries {
		sources = append(sources, filepath.Join(runtimeDir, e.Name()))
	}
	return archiver.Archive(sources, dest)
}

func gzipFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, jberr.Wrap(jberr.BuildFailed, err, "stating %s", path)
	}
	return info.Size(), nil
}

func streamAppend(dst *os.File, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}
