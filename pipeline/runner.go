// This file is part of z64ovl.
//
// z64ovl is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// z64ovl is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with z64ovl.  If not, see <https://www.gnu.org/licenses/>.

package pipeline

import (
	"context"
	"io"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/z64tools/z64ovl/logger"
)

// Runner is the interface to an external tool.
type Runner interface {
	// Run the named tool with the arguments and wait for it to finish. The
	// output of the tool is written to stdout and stderr as it is produced.
	Run(ctx context.Context, name string, args []string, stdout io.Writer, stderr io.Writer) error
}

// ExecRunner runs external tools as child processes. The child process is
// killed if the context is cancelled.
type ExecRunner struct{}

// Run implements the Runner interface.
func (ExecRunner) Run(ctx context.Context, name string, args []string, stdout io.Writer, stderr io.Writer) error {
	logger.Log(logger.Allow, "PIPELINE", commandLine(name, args))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}

// commandLine returns the command as it would be typed into a shell.
func commandLine(name string, args []string) string {
	return shellquote.Join(append([]string{name}, args...)...)
}
