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
	"fmt"
	"os"

	"github.com/russross/blackfriday"
	"github.com/spf13/cobra"

	"github.com/cereda/jbundle/internal/analyze"
)

func cmdAnalyze() *cobra.Command {
	var (
		output string
		html   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <jar>",
		Short: "Report a size/category breakdown of a built archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := analyze.Analyze(args[0])
			if err != nil {
				return err
			}

			md := analyze.Markdown(report)
			rendered := md
			if html {
				rendered = string(blackfriday.MarkdownCommon([]byte(md)))
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return nil
			}
			return os.WriteFile(output, []byte(rendered), 0o644)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	flags.BoolVar(&html, "html", false, "render the report as HTML instead of Markdown")

	return cmd
}
