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
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/logger"
	"github.com/z64tools/z64ovl/paths"
	"github.com/z64tools/z64ovl/target"
)

// StageFailed is the pattern for any error raised by a stage. The first value
// is the name of the stage and the second is the file being processed.
const StageFailed = "pipeline: %s: %s: %v"

// NoInputs is the pattern for a stage that has been given no input files.
const NoInputs = "pipeline: %s: no input files"

// Context records the artifacts produced by each stage.
type Context struct {
	CompiledArtifacts []string
	AssembledArtifact string
	LinkedArtifact    string

	// release builds are optimised and define the RELEASE macro
	Release bool
}

// Stage is one step of the pipeline.
type Stage interface {
	// Run the stage on the input files. Returns the paths of the files created.
	Run(ctx context.Context, inputs []string) ([]string, error)

	// short name of the stage for messages
	String() string
}

// the stages of the pipeline.
var (
	_ Stage = (*Compiler)(nil)
	_ Stage = (*Assembler)(nil)
	_ Stage = (*Linker)(nil)
)

// Tools is the common part of every stage.
type Tools struct {
	Config Config
	Runner Runner

	// progress messages and the output of the external tools
	Stdout io.Writer
	Stderr io.Writer
}

func (tl Tools) progress(format string, a ...any) {
	if tl.Stdout == nil {
		return
	}
	fmt.Fprintf(tl.Stdout, format, a...)
	fmt.Fprintln(tl.Stdout)
}

func (tl Tools) run(ctx context.Context, name string, args []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stdout := tl.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := tl.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	return tl.Runner.Run(ctx, name, args, stdout, stderr)
}

// Compiler is the compilation stage. Each input is a C source file and each
// output is an assembly file.
type Compiler struct {
	Tools

	// optimisation level. anything above zero is a release build
	Optimize int

	// directory for the assembly files. the current directory if empty
	OutputDir string
}

func (c *Compiler) String() string {
	return "compile"
}

// the flags for every compilation
var compilerFlags = []string{
	"-fno-addrsig",
	"-DF3DEX_GBI_2",
	"-D_LANGUAGE_C",
	"-target", "mips-mips2-elf",
	"-march=mips2",
	"-mabi=o32",
	"-mfp64",
	"-fomit-frame-pointer",
	"-S",
}

// Output returns the name of the assembly file for the source file.
func (c *Compiler) Output(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".s"
	return filepath.Join(c.OutputDir, base)
}

func (c *Compiler) args(source string) []string {
	args := append([]string{}, compilerFlags...)
	if c.Optimize > 0 {
		args = append(args, "-DRELEASE")
	} else {
		args = append(args, "-DDEBUG")
	}
	args = append(args, "-I", filepath.Join(c.Config.Home, paths.Headers))
	args = append(args, fmt.Sprintf("-O%d", c.Optimize))
	args = append(args, c.Config.CFlags...)
	args = append(args, "-o", c.Output(source), source)
	return args
}

// Run implements the Stage interface.
func (c *Compiler) Run(ctx context.Context, inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, curated.Errorf(NoInputs, c)
	}

	outputs := make([]string, 0, len(inputs))
	for _, source := range inputs {
		c.progress("Compiling %s...", source)
		err := c.run(ctx, c.Config.CC, c.args(source))
		if err != nil {
			return outputs, curated.Errorf(StageFailed, c, source, err)
		}
		out := c.Output(source)
		outputs = append(outputs, out)
		c.progress("Generated compilation unit: %s", out)
	}

	return outputs, nil
}

// Assembler is the assembly stage. All inputs are assembled into a single
// unlinked object.
type Assembler struct {
	Tools
	Output string
}

func (a *Assembler) String() string {
	return "assemble"
}

var assemblerFlags = []string{
	"-march", "mips3",
	"-mabi", "32",
	"-mno-shared",
	"-call_nonpic",
	"-EB",
}

func (a *Assembler) args(inputs []string) []string {
	args := append([]string{}, assemblerFlags...)
	args = append(args, a.Config.ASFlags...)
	args = append(args, "-o", a.Output)
	return append(args, inputs...)
}

// Run implements the Stage interface.
func (a *Assembler) Run(ctx context.Context, inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, curated.Errorf(NoInputs, a)
	}

	a.progress("Assembling to %s...", a.Output)
	err := a.run(ctx, a.Config.AS, a.args(inputs))
	if err != nil {
		return nil, curated.Errorf(StageFailed, a, a.Output, err)
	}
	a.progress("Assembled ELF object file: %s", a.Output)

	return []string{a.Output}, nil
}

// Linker is the link stage. The inputs are linked against the symbols of the
// target's linker script.
type Linker struct {
	Tools
	Output  string
	Target  target.Target
	Release bool
}

func (l *Linker) String() string {
	return "link"
}

// Script returns the path of the linker script for the target.
func (l *Linker) Script() string {
	return filepath.Join(l.Config.Home, paths.Templates, l.Target.Script())
}

func (l *Linker) args(inputs []string) []string {
	args := []string{"-A", "elf32-bigmips", "--emit-relocs", "-S", "-T", l.Script(), "-o", l.Output}
	if l.Release {
		args = append(args, "-O1")
	}
	args = append(args, l.Config.LDFlags...)
	return append(args, inputs...)
}

// Run implements the Stage interface.
func (l *Linker) Run(ctx context.Context, inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, curated.Errorf(NoInputs, l)
	}

	logger.Logf(logger.Allow, "PIPELINE", "linking for %s with %s", l.Target, l.Target.Script())

	l.progress("Generating linked object file...")
	err := l.run(ctx, l.Config.LD, l.args(inputs))
	if err != nil {
		return nil, curated.Errorf(StageFailed, l, l.Output, err)
	}
	l.progress("Generated linked ELF object file: %s", l.Output)

	return []string{l.Output}, nil
}
