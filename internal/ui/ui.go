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

// Package ui defines the pipeline's presentation sink: the narrow interface
// the orchestrator (internal/pipeline) uses to report stage progress,
// download progress, and final status, decoupled from how it is rendered.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sink receives progress and status events from a pipeline run.
type Sink interface {
	Stage(name string)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Progress(label string, done, total int64)
	Done(message string)
	Failed(message string)
}

// ColorSink renders events to an io.Writer with fatih/color. Whether color
// codes are emitted follows color.NoColor, which fatih/color decides from
// stdout, not from Out.
type ColorSink struct {
	Out io.Writer
}

// NewColorSink returns a Sink that writes to w.
func NewColorSink(w io.Writer) *ColorSink {
	return &ColorSink{Out: w}
}

func (s *ColorSink) Stage(name string) {
	fmt.Fprintln(s.Out, color.CyanString("==>")+" "+name)
}

func (s *ColorSink) Info(format string, args ...any) {
	fmt.Fprintln(s.Out, fmt.Sprintf(format, args...))
}

func (s *ColorSink) Warn(format string, args ...any) {
	fmt.Fprintln(s.Out, color.YellowString("warning:")+" "+fmt.Sprintf(format, args...))
}

func (s *ColorSink) Progress(label string, done, total int64) {
	if total <= 0 {
		fmt.Fprintf(s.Out, "\r%s: %d bytes", label, done)
		return
	}
	pct := float64(done) / float64(total) * 100
	fmt.Fprintf(s.Out, "\r%s: %d/%d bytes (%.0f%%)", label, done, total, pct)
	if done >= total {
		fmt.Fprintln(s.Out)
	}
}

func (s *ColorSink) Done(message string) {
	fmt.Fprintln(s.Out, color.GreenString("✓")+" "+message)
}

func (s *ColorSink) Failed(message string) {
	fmt.Fprintln(s.Out, color.RedString("✗")+" "+message)
}

// NoopSink discards every event. Used in tests.
type NoopSink struct{}

func (NoopSink) Stage(string)                 {}
func (NoopSink) Info(string, ...any)           {}
func (NoopSink) Warn(string, ...any)           {}
func (NoopSink) Progress(string, int64, int64) {}
func (NoopSink) Done(string)                   {}
func (NoopSink) Failed(string)                 {}
