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

// Command jbundle packs a JVM application into a single self-extracting
// executable. See jbundle build --help for the flag surface.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := rootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "jbundle",
		Short:        "Pack a JVM application into a single self-extracting executable",
		SilenceUsage: true,
	}
	cmd.AddCommand(cmdBuild())
	cmd.AddCommand(cmdAnalyze())
	cmd.AddCommand(cmdClean())
	cmd.AddCommand(cmdInfo())
	return cmd
}
