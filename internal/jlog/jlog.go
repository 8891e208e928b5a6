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

// Package jlog sets up jbundle's structured diagnostic logging, separate
// from internal/ui's user-facing progress sink. The build command attaches
// its input, target and Java version as zerolog fields for anyone piping
// jbundle's stderr into a log aggregator.
package jlog

import (
	"os"

	"github.com/rs/zerolog"
)

// Setup sets zerolog's global level and returns a new console logger that
// writes to stderr. verbose raises the level to debug; otherwise only info
// and above are emitted.
func Setup(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	return logger
}
