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
	"os"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/logger"
	"github.com/z64tools/z64ovl/overlay"
	"github.com/z64tools/z64ovl/target"
)

// Build runs every stage of the pipeline and generates an overlay from the
// linked object.
type Build struct {
	Tools

	Sources []string
	Target  target.Target
	Release bool

	// directory for the assembly files. the current directory if empty
	OutputDir string

	// the assembled and linked objects are written to temporary files which
	// are removed when Run() returns unless KeepTemporary is true
	KeepTemporary bool

	// options for the overlay. Options.Output must be set. the location of
	// the initialisation structure is always reported
	Overlay overlay.Options
}

// optimisation level for release builds
const releaseOptimisation = 4

func (b *Build) tempFile(pattern string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	return name, f.Close()
}

// Run the build. The returned Context records the artifacts of every stage that
// succeeded, even when an error is returned.
func (b *Build) Run(ctx context.Context) (*Context, error) {
	pc := &Context{Release: b.Release}

	comp := &Compiler{Tools: b.Tools, OutputDir: b.OutputDir}
	if b.Release {
		comp.Optimize = releaseOptimisation
	}

	var err error

	pc.CompiledArtifacts, err = comp.Run(ctx, b.Sources)
	if err != nil {
		return pc, err
	}

	var temps []string
	if !b.KeepTemporary {
		defer func() {
			for _, t := range temps {
				os.Remove(t)
			}
		}()
	}

	asmOut, err := b.tempFile("z64ovl-*.o")
	if err != nil {
		return pc, curated.Errorf(StageFailed, "assemble", "temporary file", err)
	}
	temps = append(temps, asmOut)

	asm := &Assembler{Tools: b.Tools, Output: asmOut}
	if _, err = asm.Run(ctx, pc.CompiledArtifacts); err != nil {
		return pc, err
	}
	pc.AssembledArtifact = asmOut

	linkOut, err := b.tempFile("z64ovl-*.elf")
	if err != nil {
		return pc, curated.Errorf(StageFailed, "link", "temporary file", err)
	}
	temps = append(temps, linkOut)

	lnk := &Linker{Tools: b.Tools, Output: linkOut, Target: b.Target, Release: b.Release}
	if _, err = lnk.Run(ctx, []string{pc.AssembledArtifact}); err != nil {
		return pc, err
	}
	pc.LinkedArtifact = linkOut

	if err := ctx.Err(); err != nil {
		return pc, curated.Errorf(StageFailed, "overlay", b.Overlay.Output, err)
	}

	opts := b.Overlay
	opts.ShowInitAddress = true

	w := b.Stdout
	if w == nil {
		w = io.Discard
	}

	err = overlay.Convert(pc.LinkedArtifact, opts, w)
	if err != nil {
		return pc, curated.Errorf(StageFailed, "overlay", opts.Output, err)
	}

	logger.Logf(logger.Allow, "PIPELINE", "built %s from %d source files", opts.Output, len(b.Sources))

	return pc, nil
}
