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

package buildsys

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cereda/jbundle/internal/config"
	"github.com/cereda/jbundle/internal/jberr"
	"github.com/cereda/jbundle/internal/procrun"
)

// Build invokes the build tool for system against projectDir and returns the
// path to the produced fat archive. sub is used only for Gradle, to scope
// the build and jar-discovery to one subproject of a multi-project build
// (the zero value selects the whole project).
func Build(ctx context.Context, projectDir string, system config.BuildSystem, sub config.Subproject) (string, error) {
	switch system {
	case config.DepsEdn:
		return buildDepsEdn(ctx, projectDir)
	case config.Leiningen:
		return buildLeiningen(ctx, projectDir)
	case config.Maven:
		return buildMaven(ctx, projectDir)
	default:
		return buildGradle(ctx, projectDir, sub)
	}
}

func buildDepsEdn(ctx context.Context, projectDir string) (string, error) {
	if exists(filepath.Join(projectDir, "build.clj")) {
		return runAndFindJar(ctx, projectDir, "clojure", []string{"-T:build", "uber"}, "target")
	}

	content, _ := os.ReadFile(filepath.Join(projectDir, "deps.edn"))
	if strings.Contains(string(content), ":uberjar") {
		return runAndFindJar(ctx, projectDir, "clojure", []string{"-X:uberjar"}, "target")
	}

	return runAndFindJar(ctx, projectDir, "clojure", []string{"-T:build", "uber"}, "target")
}

func buildLeiningen(ctx context.Context, projectDir string) (string, error) {
	return runAndFindJar(ctx, projectDir, "lein", []string{"uberjar"}, "target")
}

func buildMaven(ctx context.Context, projectDir string) (string, error) {
	return runAndFindJar(ctx, projectDir, "mvn", []string{"-q", "-DskipTests", "package"}, "target")
}

func buildGradle(ctx context.Context, projectDir string, sub config.Subproject) (string, error) {
	args := []string{"build", "-x", "test"}
	dir := projectDir
	outDir := filepath.Join(projectDir, "build", "libs")
	if sub.Name != "" && sub.Name != "(root)" {
		args = []string{":" + sub.Name + ":build", "-x", "test"}
		if sub.Path != "" {
			outDir = filepath.Join(sub.Path, "build", "libs")
		}
	}

	gradleBin := "gradle"
	if exists(filepath.Join(projectDir, "gradlew")) {
		gradleBin = filepath.Join(projectDir, "gradlew")
	}

	return runAndFindJarIn(ctx, dir, gradleBin, args, outDir)
}

func runAndFindJar(ctx context.Context, projectDir, command string, args []string, artifactSubdir string) (string, error) {
	return runAndFindJarIn(ctx, projectDir, command, args, filepath.Join(projectDir, artifactSubdir))
}

func runAndFindJarIn(ctx context.Context, dir, command string, args []string, artifactDir string) (string, error) {
	result, err := procrun.Run(ctx, procrun.Invocation{Command: command, Args: args, Dir: dir})
	if err != nil {
		return "", jberr.Wrap(jberr.BuildFailed, err, "failed to run %s", command)
	}
	if result.ExitCode != 0 {
		return "", jberr.New(jberr.BuildFailed, "%s %s failed:\n%s", command, strings.Join(args, " "), string(result.Stderr))
	}
	return findUberjar(artifactDir)
}

// findUberjar picks the most recently modified jar in dir that looks like a
// fat archive (name contains "standalone", "uber", "-all", "fat", or
// "shaded"); failing that, the most recently modified jar. Jars whose name
// contains "sources", "javadoc" or "plain" are never picked.
func findUberjar(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", jberr.New(jberr.UberjarNotFound, "no build output directory %s", dir)
	}

	var fat, any []jarCandidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jar") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		lower := strings.ToLower(e.Name())
		c := jarCandidate{path: filepath.Join(dir, e.Name()), modTime: info.ModTime().UnixNano()}

		if strings.Contains(lower, "sources") || strings.Contains(lower, "javadoc") || strings.Contains(lower, "plain") {
			continue
		}
		any = append(any, c)
		if strings.Contains(lower, "standalone") || strings.Contains(lower, "uber") ||
			strings.Contains(lower, "-all") || strings.Contains(lower, "fat") || strings.Contains(lower, "shaded") {
			fat = append(fat, c)
		}
	}

	if jar, ok := newest(fat); ok {
		return jar, nil
	}
	if jar, ok := newest(any); ok {
		return jar, nil
	}

	return "", jberr.New(jberr.UberjarNotFound, "no jar artifact found in %s", dir)
}

type jarCandidate struct {
	path    string
	modTime int64
}

func newest(cands []jarCandidate) (string, bool) {
	if len(cands) == 0 {
		return "", false
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].modTime > cands[j].modTime })
	return cands[0].path, true
}
