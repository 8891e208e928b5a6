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

// Package buildsys detects which build system owns a project directory and,
// for Gradle, parses multi-project layouts into application subprojects.
package buildsys

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cereda/jbundle/internal/config"
	"github.com/cereda/jbundle/internal/jberr"
)

// Project describes a parsed Gradle build, possibly multi-module.
type Project struct {
	Root        string
	Subprojects []config.Subproject
}

// ApplicationSubprojects returns the subset of p.Subprojects with
// HasApplication set.
func (p Project) ApplicationSubprojects() []config.Subproject {
	var out []config.Subproject
	for _, s := range p.Subprojects {
		if s.HasApplication {
			out = append(out, s)
		}
	}
	return out
}

// IsMultiProject reports whether p describes more than a single root build.
func (p Project) IsMultiProject() bool {
	if len(p.Subprojects) > 1 {
		return true
	}
	if len(p.Subprojects) == 1 && p.Subprojects[0].Name != "(root)" {
		return true
	}
	return false
}

var skipDirs = map[string]bool{
	"build": true, "build-logic": true, ".gradle": true, ".git": true,
	"gradle": true, "buildSrc": true, "node_modules": true, "target": true,
	".idea": true, "versions": true, "test-support": true,
}

// Detect inspects projectDir and returns the detected build, in priority
// order deps.edn > project.clj > pom.xml > gradle.
func Detect(projectDir string) (config.DetectedBuild, error) {
	if exists(filepath.Join(projectDir, "deps.edn")) {
		return config.DetectedBuild{Simple: config.DepsEdn}, nil
	}
	if exists(filepath.Join(projectDir, "project.clj")) {
		return config.DetectedBuild{Simple: config.Leiningen}, nil
	}
	if exists(filepath.Join(projectDir, "pom.xml")) {
		return config.DetectedBuild{Simple: config.Maven}, nil
	}

	hasBuildGradle := exists(filepath.Join(projectDir, "build.gradle")) || exists(filepath.Join(projectDir, "build.gradle.kts"))
	if hasBuildGradle {
		if proj := ParseGradleProject(projectDir); proj != nil {
			apps := proj.ApplicationSubprojects()
			if proj.IsMultiProject() && len(apps) > 0 {
				return config.DetectedBuild{
					Simple:         config.Gradle,
					IsMultiProject: true,
					ProjectRoot:    projectDir,
					Subprojects:    apps,
				}, nil
			}
		}
		return config.DetectedBuild{Simple: config.Gradle}, nil
	}

	return config.DetectedBuild{}, jberr.New(jberr.NoBuildSystem, "no recognized build system in %s", projectDir)
}

// ParseGradleProject parses root as a Gradle project, returning nil if no
// Gradle markers are present.
func ParseGradleProject(root string) *Project {
	hasSettingsKts := exists(filepath.Join(root, "settings.gradle.kts"))
	hasSettings := exists(filepath.Join(root, "settings.gradle"))
	hasBuildKts := exists(filepath.Join(root, "build.gradle.kts"))
	hasBuild := exists(filepath.Join(root, "build.gradle"))

	if !hasSettingsKts && !hasSettings && !hasBuildKts && !hasBuild {
		return nil
	}

	var subprojects []config.Subproject

	settingsPath := ""
	switch {
	case hasSettingsKts:
		settingsPath = filepath.Join(root, "settings.gradle.kts")
	case hasSettings:
		settingsPath = filepath.Join(root, "settings.gradle")
	}

	if settingsPath != "" {
		if content, err := os.ReadFile(settingsPath); err == nil {
			for _, name := range parseIncludes(string(content)) {
				subPath := filepath.Join(root, strings.ReplaceAll(name, ":", "/"))
				if sub, ok := parseSubproject(name, subPath); ok {
					subprojects = append(subprojects, sub)
				}
			}
		}
	}

	if len(subprojects) == 0 {
		subprojects = scanDirectoriesForSubprojects(root)
	}

	if hasBuildKts || hasBuild {
		buildPath := filepath.Join(root, "build.gradle")
		if hasBuildKts {
			buildPath = filepath.Join(root, "build.gradle.kts")
		}
		if sub, ok := parseBuildGradle("(root)", buildPath); ok && sub.HasApplication {
			sub.Path = root
			subprojects = append(subprojects, sub)
		}
	}

	return &Project{Root: root, Subprojects: subprojects}
}

func scanDirectoriesForSubprojects(root string) []config.Subproject {
	var subprojects []config.Subproject

	entries, err := os.ReadDir(root)
	if err != nil {
		return subprojects
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if skipDirs[name] || strings.HasPrefix(name, ".") {
			continue
		}
		if sub, ok := parseSubproject(name, filepath.Join(root, name)); ok {
			subprojects = append(subprojects, sub)
		}
	}

	return subprojects
}

var includeRe = regexp.MustCompile(`["':]+([a-zA-Z0-9_\-:]+)["']`)

// parseIncludes extracts project names from include(...) statements in a
// settings.gradle(.kts), deliberately excluding includeBuild/includeFlat
// (composite-build declarations, not subprojects).
func parseIncludes(content string) []string {
	var includes []string
	seen := map[string]bool{}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		code := trimmed
		if pos := strings.Index(trimmed, "//"); pos >= 0 {
			code = trimmed[:pos]
		}

		if !strings.HasPrefix(code, "include") || strings.HasPrefix(code, "includeBuild") || strings.HasPrefix(code, "includeFlat") {
			continue
		}

		for _, m := range includeRe.FindAllStringSubmatch(code, -1) {
			name := strings.TrimPrefix(m[1], ":")
			if !seen[name] {
				seen[name] = true
				includes = append(includes, name)
			}
		}
	}

	return includes
}

func parseSubproject(name, path string) (config.Subproject, bool) {
	buildKts := filepath.Join(path, "build.gradle.kts")
	buildGroovy := filepath.Join(path, "build.gradle")

	if exists(buildKts) {
		sub, ok := parseBuildGradle(name, buildKts)
		if ok {
			sub.Path = path
		}
		return sub, ok
	}
	if exists(buildGroovy) {
		sub, ok := parseBuildGradle(name, buildGroovy)
		if ok {
			sub.Path = path
		}
		return sub, ok
	}
	return config.Subproject{}, false
}

var applicationMarkers = []string{
	`id("application")`, `id 'application'`, `id "application"`,
	`plugin: 'application'`, `apply plugin: 'application'`, `apply plugin: "application"`,
}

func parseBuildGradle(name, path string) (config.Subproject, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return config.Subproject{}, false
	}
	text := string(content)

	hasApplication := false
	for _, marker := range applicationMarkers {
		if strings.Contains(text, marker) {
			hasApplication = true
			break
		}
	}

	return config.Subproject{
		Name:           name,
		HasApplication: hasApplication,
		MainClass:      extractMainClass(text),
		AddModules:     extractAddModules(text),
	}, true
}

var (
	mainClassKtsRe    = regexp.MustCompile(`mainClass\.set\s*\(\s*["']([^"']+)["']\s*\)`)
	mainClassGroovyRe = regexp.MustCompile(`mainClass(?:Name)?\s*=\s*["']([^"']+)["']`)
	addModuleRe       = regexp.MustCompile(`addModules\.add\s*\(\s*["']([^"']+)["']\s*\)`)
	addModulesAllRe   = regexp.MustCompile(`addModules\.addAll\s*\(\s*listOf\s*\(([^)]+)\)\s*\)`)
	quotedRe          = regexp.MustCompile(`["']([^"']+)["']`)
)

func extractMainClass(content string) string {
	if m := mainClassKtsRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	if m := mainClassGroovyRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

func extractAddModules(content string) []string {
	var modules []string
	for _, m := range addModuleRe.FindAllStringSubmatch(content, -1) {
		modules = append(modules, m[1])
	}
	for _, m := range addModulesAllRe.FindAllStringSubmatch(content, -1) {
		for _, mm := range quotedRe.FindAllStringSubmatch(m[1], -1) {
			modules = append(modules, mm[1])
		}
	}
	return modules
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
