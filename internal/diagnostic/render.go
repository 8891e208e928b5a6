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

package diagnostic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Render formats a single diagnostic, with optional source context, the way
// rustc/Cargo-style tools do: a colored header line, a " --> file:line:col"
// location, then a gutter of numbered source lines with a caret under the
// offending column.
func Render(d Diagnostic, ctx SourceContext, hasCtx bool) string {
	var b strings.Builder

	label := color.New(color.FgYellow, color.Bold).Sprint("warning")
	if d.Severity == SeverityError {
		label = color.New(color.FgRed, color.Bold).Sprint("error")
	}
	fmt.Fprintf(&b, "%s: %s\n", label, d.Message)

	if d.File != "" {
		location := d.File
		if d.Line > 0 && d.Column > 0 {
			location = fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
		} else if d.Line > 0 {
			location = fmt.Sprintf("%s:%d", d.File, d.Line)
		}
		fmt.Fprintf(&b, " %s %s\n", color.BlueString("-->"), location)
	}

	if !hasCtx || len(ctx.Lines) == 0 {
		return b.String()
	}

	maxLineNum := ctx.Lines[len(ctx.Lines)-1].Number
	gutterWidth := len(strconv.Itoa(maxLineNum))

	fmt.Fprintf(&b, "%s %s\n", strings.Repeat(" ", gutterWidth), color.BlueString("|"))

	for i, line := range ctx.Lines {
		numStr := fmt.Sprintf("%*d", gutterWidth, line.Number)
		fmt.Fprintf(&b, "%s %s %s\n", color.BlueString(numStr), color.BlueString("|"), line.Content)

		if i == ctx.ErrorLineIndex && d.Column > 0 {
			colOffset := d.Column - 1
			if colOffset < 0 {
				colOffset = 0
			}
			caretLine := strings.Repeat(" ", colOffset) + "^"
			colored := color.YellowString(caretLine)
			if d.Severity == SeverityError {
				colored = color.RedString(caretLine)
			}
			fmt.Fprintf(&b, "%s %s %s\n", strings.Repeat(" ", gutterWidth), color.BlueString("|"), colored)
		}
	}

	return b.String()
}
