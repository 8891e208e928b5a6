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

package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cereda/jbundle/internal/config"
	"github.com/cereda/jbundle/internal/jlog"
	"github.com/cereda/jbundle/internal/pipeline"
	"github.com/cereda/jbundle/internal/ui"
)

func cmdBuild() *cobra.Command {
	var (
		input         string
		output        string
		javaVersion   int
		target        string
		jvmArgs       []string
		shrink        bool
		profile       string
		noAppCDS      bool
		crac          bool
		gradleProject string
		gradleAll     bool
		modules       string
		jlinkRuntime  string
		compactBanner bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and pack a project into a self-extracting executable",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			cli := config.CLIOverrides{
				Input:           input,
				InputSet:        flags.Changed("input"),
				Output:          output,
				OutputSet:       flags.Changed("output"),
				JavaVersion:     javaVersion,
				JavaVersionSet:  flags.Changed("java-version"),
				Target:          target,
				TargetSet:       flags.Changed("target"),
				JvmArgs:         jvmArgs,
				Shrink:          shrink,
				ShrinkSet:       flags.Changed("shrink"),
				Profile:         profile,
				ProfileSet:      flags.Changed("profile"),
				NoAppCDS:        noAppCDS,
				NoAppCDSSet:     flags.Changed("no-appcds"),
				CRaC:            crac,
				CRaCSet:         flags.Changed("crac"),
				GradleProject:   gradleProject,
				GradleAll:       gradleAll,
				Modules:         modules,
				ModulesSet:      flags.Changed("modules"),
				JlinkRuntime:    jlinkRuntime,
				JlinkRuntimeSet: flags.Changed("jlink-runtime"),
				CompactBanner:   compactBanner,
				Verbose:         verbose,
			}

			projectDir := input
			if projectDir == "" {
				projectDir = "."
			}
			fc, err := config.LoadFileConfig(projectDir)
			if err != nil {
				return err
			}
			bc, err := config.Merge(fc, cli)
			if err != nil {
				return err
			}

			log := jlog.Setup(bc.Verbose)
			log.Info().Str("input", bc.Input).Str("target", bc.Target.String()).
				Str("java-version", javaVersionLabel(bc)).Msg("starting build")

			sink := ui.NewColorSink(cmd.OutOrStdout())
			if err := pipeline.Run(cmd.Context(), bc, sink); err != nil {
				log.Error().Err(err).Msg("build failed")
				return err
			}
			log.Info().Msg("build complete")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "", "project directory or jar file to package (default \".\")")
	flags.StringVarP(&output, "output", "o", "", "path for the packed executable (default \"dist/app\")")
	flags.IntVar(&javaVersion, "java-version", 0, "Java runtime version to bundle (default: auto-detected)")
	flags.StringVar(&target, "target", "", "target triple: linux-x64, linux-aarch64, macos-x64, macos-aarch64")
	flags.StringSliceVar(&jvmArgs, "jvm-args", nil, "extra JVM arguments, may be repeated")
	flags.BoolVar(&shrink, "shrink", false, "shrink the archive before packing: drop build metadata, signatures and sources, recompress the rest")
	flags.StringVar(&profile, "profile", "", "JVM flag profile: cli or server (default: server)")
	flags.BoolVar(&noAppCDS, "no-appcds", false, "disable AppCDS archive generation")
	flags.BoolVar(&crac, "crac", false, "checkpoint the warmed-up JVM with CRaC for fast startup")
	flags.StringVar(&gradleProject, "gradle-project", "", "Gradle subproject to build (multi-project builds only)")
	flags.BoolVar(&gradleAll, "all", false, "build and pack every application subproject (multi-project Gradle builds)")
	flags.StringVar(&modules, "modules", "", "comma-separated jlink module list, overriding jdeps detection")
	flags.StringVar(&jlinkRuntime, "jlink-runtime", "", "path to a pre-built runtime image, skipping jdeps/jlink")
	flags.BoolVar(&compactBanner, "compact-banner", false, "use a one-line startup banner instead of the ASCII-art banner")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func javaVersionLabel(bc *config.BuildConfig) string {
	if bc.JavaVersion == 0 {
		return "auto"
	}
	return strconv.Itoa(bc.JavaVersion)
}
