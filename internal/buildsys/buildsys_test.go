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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cereda/jbundle/internal/config"
)

func TestDetectsDepsEdn(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deps.edn"), []byte("{}"), 0o644))

	result, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DepsEdn, result.Simple)
	assert.False(t, result.IsMultiProject)
}

func TestDetectsLeiningen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.clj"), []byte("(defproject foo)"), 0o644))

	result, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Leiningen, result.Simple)
}

func TestDepsEdnHasPriorityOverProjectClj(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deps.edn"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.clj"), []byte("(defproject foo)"), 0o644))

	result, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DepsEdn, result.Simple)
}

func TestDetectsMaven(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte("<project/>"), 0o644))

	result, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Maven, result.Simple)
}

func TestClojureHasPriorityOverJava(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deps.edn"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte("<project/>"), 0o644))

	result, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DepsEdn, result.Simple)
}

func TestDetectsGradle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.gradle"), []byte("apply plugin: 'java'"), 0o644))

	result, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Gradle, result.Simple)
	assert.False(t, result.IsMultiProject)
}

func TestDetectsGradleKts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.gradle.kts"), []byte("plugins { java }"), 0o644))

	result, err := Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Gradle, result.Simple)
}

func TestErrorWhenNoBuildSystem(t *testing.T) {
	dir := t.TempDir()
	_, err := Detect(dir)
	require.Error(t, err)
}

func TestDetectsGradleMultiProject(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.gradle.kts"), []byte(`
rootProject.name = "myproject"
include("app")
`), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.gradle.kts"), []byte("plugins { java }"), 0o644))

	appDir := filepath.Join(dir, "app")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "build.gradle.kts"), []byte(`
plugins {
    id("application")
}
application {
    mainClass.set("com.example.App")
}
`), 0o644))

	result, err := Detect(dir)
	require.NoError(t, err)
	require.True(t, result.IsMultiProject)
	require.Len(t, result.Subprojects, 1)
	assert.Equal(t, "app", result.Subprojects[0].Name)
	assert.Equal(t, "com.example.App", result.Subprojects[0].MainClass)
}

func TestParseIncludesJabrefStyleIgnoresIncludeBuildAndComments(t *testing.T) {
	content := `
pluginManagement {
    includeBuild("build-logic")
}

plugins {
    id("org.jabref.gradle.build")
}

rootProject.name = "JabRef"

javaModules {
    directory(".")
    versions("versions")
    // include("jablib", "jabkit")
}
`
	assert.Empty(t, parseIncludes(content))
}

func TestParseIncludesKotlinDsl(t *testing.T) {
	content := `
rootProject.name = "myproject"
include("module1")
include("module2", "module3")
include(":nested:submodule")
`
	includes := parseIncludes(content)
	assert.Contains(t, includes, "module1")
	assert.Contains(t, includes, "module2")
	assert.Contains(t, includes, "nested:submodule")
}

func TestParseIncludesGroovyDsl(t *testing.T) {
	content := `
rootProject.name = 'myproject'
include 'module1'
include ':module2', ':module3'
`
	includes := parseIncludes(content)
	assert.Contains(t, includes, "module1")
	assert.Contains(t, includes, "module2")
}

func TestExtractMainClassKotlin(t *testing.T) {
	content := `
application {
    mainClass.set("com.example.Main")
}
`
	assert.Equal(t, "com.example.Main", extractMainClass(content))
}

func TestExtractMainClassGroovy(t *testing.T) {
	content := `
application {
    mainClassName = 'com.example.Main'
}
`
	assert.Equal(t, "com.example.Main", extractMainClass(content))
}

func TestExtractAddModulesSingle(t *testing.T) {
	content := `
javaModulePackaging {
    addModules.add("jdk.incubator.vector")
}
`
	assert.Equal(t, []string{"jdk.incubator.vector"}, extractAddModules(content))
}

func TestExtractAddModulesAddAll(t *testing.T) {
	content := `
javaModulePackaging {
    addModules.addAll(listOf("jdk.incubator.vector", "jdk.unsupported"))
}
`
	modules := extractAddModules(content)
	assert.Contains(t, modules, "jdk.incubator.vector")
	assert.Contains(t, modules, "jdk.unsupported")
}

func TestParseGradleProjectSingleModule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.gradle.kts"), []byte(`
plugins {
    id("application")
}
application {
    mainClass.set("com.example.Main")
}
`), 0o644))

	proj := ParseGradleProject(dir)
	require.NotNil(t, proj)
	apps := proj.ApplicationSubprojects()
	require.Len(t, apps, 1)
	assert.Equal(t, "(root)", apps[0].Name)
}

func TestParseGradleProjectMultiModule(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.gradle.kts"), []byte(`
rootProject.name = "myproject"
include("app")
include("lib")
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.gradle.kts"), []byte(`
plugins {
    id("java")
}
`), 0o644))

	appDir := filepath.Join(dir, "app")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "build.gradle.kts"), []byte(`
plugins {
    id("application")
}
application {
    mainClass.set("com.example.App")
}
`), 0o644))

	libDir := filepath.Join(dir, "lib")
	require.NoError(t, os.MkdirAll(libDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(libDir, "build.gradle.kts"), []byte(`
plugins {
    id("java-library")
}
`), 0o644))

	proj := ParseGradleProject(dir)
	require.NotNil(t, proj)
	assert.True(t, proj.IsMultiProject())

	apps := proj.ApplicationSubprojects()
	require.Len(t, apps, 1)
	assert.Equal(t, "app", apps[0].Name)
	assert.Equal(t, "com.example.App", apps[0].MainClass)
}

func TestParseGradleProjectWithCustomPluginFallsBackToDirectoryScan(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.gradle.kts"), []byte(`
pluginManagement {
    includeBuild("build-logic")
}
plugins {
    id("org.jabref.gradle.build")
}
rootProject.name = "JabRef"
javaModules {
    directory(".")
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.gradle.kts"), []byte(`
plugins {
    id("java")
}
`), 0o644))

	jabkitDir := filepath.Join(dir, "jabkit")
	require.NoError(t, os.MkdirAll(jabkitDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(jabkitDir, "build.gradle.kts"), []byte(`
plugins {
    id("application")
}
application {
    mainClass.set("org.jabref.cli.JabKit")
}
`), 0o644))

	jablibDir := filepath.Join(dir, "jablib")
	require.NoError(t, os.MkdirAll(jablibDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(jablibDir, "build.gradle.kts"), []byte(`
plugins {
    id("java-library")
}
`), 0o644))

	buildLogicDir := filepath.Join(dir, "build-logic")
	require.NoError(t, os.MkdirAll(buildLogicDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(buildLogicDir, "build.gradle.kts"), []byte(`
plugins {
    id("java-gradle-plugin")
}
`), 0o644))

	proj := ParseGradleProject(dir)
	require.NotNil(t, proj)

	apps := proj.ApplicationSubprojects()
	require.Len(t, apps, 1)
	assert.Equal(t, "jabkit", apps[0].Name)
	assert.Equal(t, "org.jabref.cli.JabKit", apps[0].MainClass)
}
