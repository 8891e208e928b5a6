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

// Package procrun wraps subprocess invocation behind a single, testable
// interface.
package procrun

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/cereda/jbundle/internal/jberr"
)

// Invocation is the input to Run: a command, its arguments, working
// directory, and additional environment variables.
type Invocation struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to the inherited environment
}

// Result is the output of a completed subprocess.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Run executes inv and returns its outcome. A non-zero exit is reported in
// Result, not as a Go error — only a failure to start the process (missing
// binary, permissions) is a Go error. Callers that need BuildFailed/
// JlinkFailed/JdepsFailed semantics wrap Result themselves.
func Run(ctx context.Context, inv Invocation) (*Result, error) {
	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(cmd.Environ(), inv.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if err == nil {
		result.ExitCode = 0
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return nil, jberr.Wrap(jberr.BuildFailed, err, "failed to run %s", inv.Command)
}
