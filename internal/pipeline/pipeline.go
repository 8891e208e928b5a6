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

// Package pipeline sequences the linear, stage-gated build: resolve input,
// detect and run the project's build, optionally shrink the resulting
// archive, probe the required Java version, populate the runtime cache,
// detect modules, link a runtime image, optionally checkpoint, and pack the
// result.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cereda/jbundle/internal/adoptium"
	"github.com/cereda/jbundle/internal/buildsys"
	"github.com/cereda/jbundle/internal/cache"
	"github.com/cereda/jbundle/internal/classver"
	"github.com/cereda/jbundle/internal/config"
	"github.com/cereda/jbundle/internal/crac"
	"github.com/cereda/jbundle/internal/diagnostic"
	"github.com/cereda/jbundle/internal/download"
	"github.com/cereda/jbundle/internal/jberr"
	"github.com/cereda/jbundle/internal/jdeps"
	"github.com/cereda/jbundle/internal/jlink"
	"github.com/cereda/jbundle/internal/pack"
	"github.com/cereda/jbundle/internal/shrink"
	"github.com/cereda/jbundle/internal/ui"
)

// Run executes the full pipeline for bc, writing progress to sink. On a
// multi-project Gradle build it packs one executable per selected
// application subproject; when more than one is selected, each output path
// is suffixed with "-{subproject}".
func Run(ctx context.Context, bc *config.BuildConfig, sink ui.Sink) error {
	if sink == nil {
		sink = ui.NoopSink{}
	}

	cacheRoot, err := config.CacheRoot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cacheRoot, 0o755); err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "creating cache root %s", cacheRoot)
	}

	sink.Stage("resolve input")
	info, err := os.Stat(bc.Input)
	if err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "resolving input %s", bc.Input)
	}

	if !info.IsDir() {
		return runOne(ctx, bc, sink, cacheRoot, bc.Input, config.Gradle, bc.Output)
	}

	sink.Stage("detect build system")
	detected, err := buildsys.Detect(bc.Input)
	if err != nil {
		return err
	}

	if !detected.IsMultiProject {
		jarPath, err := runBuild(ctx, sink, bc.Input, detected.Simple, config.Subproject{})
		if err != nil {
			return err
		}
		return runOne(ctx, bc, sink, cacheRoot, jarPath, detected.Simple, bc.Output)
	}

	selected, err := selectSubprojects(detected.Subprojects, bc)
	if err != nil {
		return err
	}

	for _, sub := range selected {
		jarPath, err := runBuild(ctx, sink, sub.Path, config.Gradle, sub)
		if err != nil {
			return err
		}

		out := bc.Output
		if len(selected) > 1 {
			out = bc.Output + "-" + sub.Name
		}

		subBC := *bc
		subBC.Output = out
		subBC.ModulesOverride = mergeUnique(bc.ModulesOverride, sub.AddModules)

		if err := runOne(ctx, &subBC, sink, cacheRoot, jarPath, config.Gradle, out); err != nil {
			return err
		}
	}

	return nil
}

// selectSubprojects applies --gradle-project/--all selection to the
// detected application subprojects.
func selectSubprojects(apps []config.Subproject, bc *config.BuildConfig) ([]config.Subproject, error) {
	if bc.GradleAll {
		return apps, nil
	}
	if bc.GradleProject != "" {
		for _, s := range apps {
			if s.Name == bc.GradleProject {
				return []config.Subproject{s}, nil
			}
		}
		return nil, jberr.New(jberr.BuildFailed, "no application subproject named %q", bc.GradleProject)
	}
	if len(apps) == 1 {
		return apps, nil
	}
	return nil, jberr.New(jberr.BuildFailed, "multiple application subprojects found; use --gradle-project or --all")
}

func runBuild(ctx context.Context, sink ui.Sink, projectDir string, system config.BuildSystem, sub config.Subproject) (string, error) {
	sink.Stage("build")
	jarPath, err := buildsys.Build(ctx, projectDir, system, sub)
	if err != nil {
		reportBuildFailure(sink, err, system)
		return "", err
	}
	sink.Done("built " + jarPath)
	return jarPath, nil
}

// reportBuildFailure pretty-prints compiler diagnostics extracted from a
// BuildFailed error's message, falling back to the raw message when no
// recognizable diagnostic is found.
func reportBuildFailure(sink ui.Sink, err error, system config.BuildSystem) {
	if !jberr.Of(err, jberr.BuildFailed) {
		sink.Failed(err.Error())
		return
	}
	msg := err.Error()
	diagnostics := diagnostic.Parse(msg, "", system)
	if len(diagnostics) == 0 {
		sink.Failed(msg)
		return
	}
	for _, d := range diagnostics {
		ctx, ok := diagnostic.ReadContext(d.File, d.Line, 2)
		sink.Failed(diagnostic.Render(d, ctx, ok))
	}
}

// runOne runs stages S3-S9 for one already-built jar, producing one packed
// executable at outputPath.
func runOne(ctx context.Context, bc *config.BuildConfig, sink ui.Sink, cacheRoot, jarPath string, system config.BuildSystem, outputPath string) error {
	workDir, err := os.MkdirTemp("", "jbundle-work-")
	if err != nil {
		return jberr.Wrap(jberr.BuildFailed, err, "creating work directory")
	}
	defer os.RemoveAll(workDir)

	appArchive := jarPath

	if bc.Shrink {
		sink.Stage("shrink")
		shrunkPath := filepath.Join(workDir, "shrunk.jar")
		result, err := shrink.Shrink(jarPath, shrunkPath)
		if err != nil {
			return err
		}
		if result.ShrunkSize < result.OriginalSize {
			appArchive = shrunkPath
			sink.Info("shrunk %d -> %d bytes", result.OriginalSize, result.ShrunkSize)
		} else {
			sink.Info("shrink did not reduce size; keeping original archive")
		}
	}

	sink.Stage("probe class version")
	probe, found, err := classver.MaxLanguageVersion(appArchive)
	if err != nil {
		return err
	}
	configured := bc.JavaVersion
	if configured == 0 {
		configured = 17 // conservative floor when the user didn't pin a version
	}
	javaVersion, err := classver.Resolve(probe, found, configured, bc.JavaVersionExplicit)
	if err != nil {
		return err
	}
	if found && javaVersion > configured {
		sink.Info("auto-upgrading to Java %d (detected class file version requires it)", javaVersion)
	}

	runtimeDir := bc.JlinkRuntimePath
	if runtimeDir == "" {
		sink.Stage("ensure runtime")
		runtimeDir, err = ensureRuntime(ctx, cacheRoot, sink, javaVersion, bc.Target)
		if err != nil {
			return err
		}
	}

	if bc.JlinkRuntimePath == "" {
		sink.Stage("detect modules")
		var extraModules []string
		if bc.CRaC {
			extraModules = append(extraModules, "jdk.jcmd") // jcmd is required to trigger a checkpoint
		}
		modules := bc.ModulesOverride
		if len(modules) == 0 {
			modules, err = jdeps.DetectModules(ctx, runtimeDir, appArchive, extraModules)
			if err != nil {
				return err
			}
		} else {
			modules = mergeUnique(modules, extraModules)
		}

		sink.Stage("link runtime image")
		linkedDir := filepath.Join(workDir, "runtime-image")
		if err := jlink.CreateRuntime(ctx, runtimeDir, modules, linkedDir); err != nil {
			return err
		}
		runtimeDir = linkedDir
	}

	var checkpointPath string
	if bc.CRaC {
		sink.Stage("checkpoint")
		checkpointPath, err = crac.CreateCheckpoint(ctx, runtimeDir, appArchive, workDir)
		if err != nil {
			sink.Warn("checkpoint failed, continuing without warm-start: %v", err)
			checkpointPath = ""
		}
	}

	sink.Stage("pack")
	if err := pack.Pack(pack.Inputs{
		RuntimeDir:     runtimeDir,
		AppArchivePath: appArchive,
		CheckpointPath: checkpointPath,
		OutputPath:     outputPath,
		WorkDir:        workDir,
		Profile:        bc.Profile,
		JvmArgs:        bc.JvmArgs,
		AppCDS:         bc.AppCDS,
		JavaVersion:    javaVersion,
		CompactBanner:  bc.CompactBanner,
	}); err != nil {
		return err
	}

	sink.Done("packed " + outputPath)
	return nil
}

func ensureRuntime(ctx context.Context, cacheRoot string, sink ui.Sink, version int, target config.Target) (string, error) {
	registry := adoptium.NewRegistry()
	asset, err := registry.Lookup(ctx, version, target)
	if err != nil {
		return "", err
	}

	downloader := download.New(cacheRoot, sink)
	c := cache.New(cacheRoot, sink, downloader, jlink.ExtractRuntimeArchive)

	return c.EnsureRuntime(ctx, version, target, asset)
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
