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
	"os"
	"strings"
)

// SourceContext is a window of source lines surrounding an error line.
type SourceContext struct {
	Lines          []SourceLine
	ErrorLineIndex int
}

// SourceLine is one 1-based numbered line of source.
type SourceLine struct {
	Number  int
	Content string
}

// ReadContext reads file and returns contextLines of surrounding context
// around errorLine (1-based). Returns ok=false if the file can't be read or
// errorLine is out of range.
func ReadContext(file string, errorLine, contextLines int) (SourceContext, bool) {
	content, err := os.ReadFile(file)
	if err != nil {
		return SourceContext{}, false
	}

	allLines := strings.Split(string(content), "\n")
	if errorLine <= 0 || errorLine > len(allLines) {
		return SourceContext{}, false
	}

	errorIdx := errorLine - 1
	start := errorIdx - contextLines
	if start < 0 {
		start = 0
	}
	end := errorIdx + contextLines + 1
	if end > len(allLines) {
		end = len(allLines)
	}

	var lines []SourceLine
	for i := start; i < end; i++ {
		lines = append(lines, SourceLine{Number: i + 1, Content: allLines[i]})
	}

	return SourceContext{Lines: lines, ErrorLineIndex: errorIdx - start}, true
}
