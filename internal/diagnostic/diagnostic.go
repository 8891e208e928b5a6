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

// Package diagnostic is a cosmetic pretty-printer for build-tool error
// output, used only by the pipeline's failure path to show something nicer
// than a raw stdout/stderr dump; none of its output feeds back into build
// decisions.
package diagnostic

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/cereda/jbundle/internal/config"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one parsed compiler message.
type Diagnostic struct {
	Severity Severity
	Message  string
	File     string
	Line     int // 0 if unknown
	Column   int // 0 if unknown
}

var (
	clojureSyntaxRe = regexp.MustCompile(`(?i)(?:Syntax error|Compiler Exception).* at \(([^:]+):(\d+):(\d+)\)`)
	mavenErrorRe    = regexp.MustCompile(`\[ERROR]\s+(.+?):\[(\d+),(\d+)]\s+(.+)`)
	gradleErrorRe   = regexp.MustCompile(`(?m)^(.+\.java):(\d+):\s*error:\s*(.+)$`)
)

// Parse scans combined stdout/stderr for recognizable error locations,
// dispatching on the build system the way each tool's compiler formats
// diagnostics.
func Parse(stdout, stderr string, system config.BuildSystem) []Diagnostic {
	switch system {
	case config.DepsEdn, config.Leiningen:
		return parseClojure(stdout, stderr)
	case config.Maven:
		return parseMaven(stdout, stderr)
	default:
		return parseGradle(stdout, stderr)
	}
}

func parseClojure(stdout, stderr string) []Diagnostic {
	var out []Diagnostic
	combined := stderr + "\n" + stdout
	for _, m := range clojureSyntaxRe.FindAllStringSubmatch(combined, -1) {
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		out = append(out, Diagnostic{
			Severity: SeverityError,
			Message:  "syntax error",
			File:     m[1],
			Line:     line,
			Column:   col,
		})
	}
	return out
}

func parseMaven(stdout, stderr string) []Diagnostic {
	var out []Diagnostic
	combined := stdout + "\n" + stderr
	for _, m := range mavenErrorRe.FindAllStringSubmatch(combined, -1) {
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		out = append(out, Diagnostic{
			Severity: SeverityError,
			Message:  strings.TrimSpace(m[4]),
			File:     m[1],
			Line:     line,
			Column:   col,
		})
	}
	return out
}

func parseGradle(stdout, stderr string) []Diagnostic {
	var out []Diagnostic
	combined := stdout + "\n" + stderr
	for _, m := range gradleErrorRe.FindAllStringSubmatch(combined, -1) {
		line, _ := strconv.Atoi(m[2])
		out = append(out, Diagnostic{
			Severity: SeverityError,
			Message:  strings.TrimSpace(m[3]),
			File:     m[1],
			Line:     line,
		})
	}
	return out
}

// Basename returns the last element of path, a short form of a diagnostic's
// file for display.
func Basename(path string) string {
	return filepath.Base(path)
}
