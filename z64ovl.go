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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/z64tools/z64ovl/logger"
	"github.com/z64tools/z64ovl/memtable"
	"github.com/z64tools/z64ovl/modalflag"
	"github.com/z64tools/z64ovl/overlay"
	"github.com/z64tools/z64ovl/paths"
	"github.com/z64tools/z64ovl/pipeline"
	"github.com/z64tools/z64ovl/statsview"
	"github.com/z64tools/z64ovl/symbols"
	"github.com/z64tools/z64ovl/target"
	"github.com/z64tools/z64ovl/version"
)

// values returned to the operating system.
const (
	exitOK         = 0
	exitParseError = 10
	exitModeError  = 20
)

// name of the memory table in the Templates directory
const memoryTable = "Memory Table.csv"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exitVal := launch(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(exitVal)
}

// launch parses the arguments and runs the selected mode. Returns the value to
// be used with os.Exit().
func launch(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	md := &modalflag.Modes{Output: stdout}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("OVERLAY", "BUILD", "COMPILE", "ASSEMBLE", "LINK", "PREPARELINKER", "PJ64SYM", "VIEW", "VERSION")

	var stats *bool
	if statsview.Available() {
		stats = md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	}

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return exitOK

	case modalflag.ParseError:
		fmt.Fprintf(stderr, "* error: %v\n", err)
		return exitParseError
	}

	if stats != nil && *stats {
		statsview.Launch(ctx, stdout)
	}

	switch md.Mode() {
	case "OVERLAY":
		err = generate(md, stderr)

	case "BUILD":
		err = build(ctx, md, stderr)

	case "COMPILE":
		err = compile(ctx, md, stderr)

	case "ASSEMBLE":
		err = assemble(ctx, md, stderr)

	case "LINK":
		err = link(ctx, md, stderr)

	case "PREPARELINKER":
		err = prepareLinker(md, stderr)

	case "PJ64SYM":
		err = pj64sym(md, stderr)

	case "VIEW":
		err = view(md, stderr)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Fprintf(stderr, "* error in %s mode: %s\n", md, err)
		return exitModeError
	}

	return exitOK
}

// addLogFlag adds the log and verbose flags to the current mode. The returned
// function should be called after the mode has been parsed.
func addLogFlag(md *modalflag.Modes, stderr io.Writer) func() {
	log := md.AddBool("log", false, "echo log to stderr")
	verbose := md.AddBool("verbose", false, "log every skipped relocation and memory table entry")
	return func() {
		logger.SetVerbose(*verbose)
		switch {
		case !*log:
			logger.SetEcho(nil)
		case stderr == os.Stderr:
			logger.SetEcho(logger.EchoWriter(os.Stderr))
		default:
			logger.SetEcho(stderr)
		}
	}
}

func tools(md *modalflag.Modes, stderr io.Writer) (pipeline.Tools, error) {
	cfg, err := pipeline.NewConfig()
	if err != nil {
		return pipeline.Tools{}, err
	}
	return pipeline.Tools{
		Config: cfg,
		Runner: pipeline.ExecRunner{},
		Stdout: md.Output,
		Stderr: stderr,
	}, nil
}

// overlayFlags are the flags that control overlay generation in the OVERLAY
// and BUILD modes.
type overlayFlags struct {
	init      *string
	porcelain *bool
	compat    *bool
	filter    *string
}

func addOverlayFlags(md *modalflag.Modes) overlayFlags {
	return overlayFlags{
		init:      md.AddString("init", overlay.DefaultInitSymbol, "name of the actor initialisation structure"),
		porcelain: md.AddBool("porcelain", false, "output in a format suitable for parsing"),
		compat:    md.AddBool("compat", false, "write placeholder actor and object IDs into the initialisation structure"),
		filter:    md.AddString("filter", symbols.FilterMetadata.String(), "ignore relocations by symbol: metadata, local"),
	}
}

func (f overlayFlags) options(output string) (overlay.Options, error) {
	filter, err := symbols.ParseFilter(*f.filter)
	if err != nil {
		return overlay.Options{}, err
	}
	return overlay.Options{
		Output:             output,
		InitSymbol:         *f.init,
		Porcelain:          *f.porcelain,
		CompatibilityPatch: *f.compat,
		Filter:             filter,
	}, nil
}

func generate(md *modalflag.Modes, stderr io.Writer) error {
	md.NewMode()

	output := md.AddString("o", "", "path of the overlay file (required)")
	forceNoProgram := md.AddBool("fno-program", false, "create an overlay even if there is no executable code")
	showInit := md.AddBool("show-init-addr", false, "output the address of the initialisation structure")
	ovlFlags := addOverlayFlags(md)
	echo := addLogFlag(md, stderr)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	echo()

	if *output == "" {
		return fmt.Errorf("output file required for %s mode", md)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("linked ELF file required for %s mode", md)
	case 1:
		opts, err := ovlFlags.options(*output)
		if err != nil {
			return err
		}
		opts.ForceNoProgram = *forceNoProgram
		opts.ShowInitAddress = *showInit

		return overlay.Convert(md.GetArg(0), opts, md.Output)
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}
}

func build(ctx context.Context, md *modalflag.Modes, stderr io.Writer) error {
	md.NewMode()

	output := md.AddString("o", "", "path of the overlay file (required)")
	tgt := md.AddString("t", target.Default.String(), fmt.Sprintf("target ROM version: %s", target.Tags()))
	release := md.AddBool("release", false, "optimise and define the RELEASE macro")
	outDir := md.AddString("outdir", "", "directory for the compiled assembly files")
	keep := md.AddBool("keep", false, "keep the assembled and linked objects")
	ovlFlags := addOverlayFlags(md)
	echo := addLogFlag(md, stderr)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	echo()

	if *output == "" {
		return fmt.Errorf("output file required for %s mode", md)
	}
	if len(md.RemainingArgs()) == 0 {
		return fmt.Errorf("C source files required for %s mode", md)
	}

	t, err := target.Parse(*tgt)
	if err != nil {
		return err
	}

	opts, err := ovlFlags.options(*output)
	if err != nil {
		return err
	}

	tl, err := tools(md, stderr)
	if err != nil {
		return err
	}

	b := &pipeline.Build{
		Tools:         tl,
		Sources:       md.RemainingArgs(),
		Target:        t,
		Release:       *release,
		OutputDir:     *outDir,
		KeepTemporary: *keep,
		Overlay:       opts,
	}

	pc, err := b.Run(ctx)
	if *keep {
		if pc.AssembledArtifact != "" {
			fmt.Fprintf(md.Output, "Assembled object kept at %s\n", pc.AssembledArtifact)
		}
		if pc.LinkedArtifact != "" {
			fmt.Fprintf(md.Output, "Linked object kept at %s\n", pc.LinkedArtifact)
		}
	}

	return err
}

func compile(ctx context.Context, md *modalflag.Modes, stderr io.Writer) error {
	md.NewMode()

	optimize := md.AddInt("O", 0, "optimisation level")
	outDir := md.AddString("outdir", "", "directory for the assembly files")
	echo := addLogFlag(md, stderr)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	echo()

	tl, err := tools(md, stderr)
	if err != nil {
		return err
	}

	c := &pipeline.Compiler{Tools: tl, Optimize: *optimize, OutputDir: *outDir}
	_, err = c.Run(ctx, md.RemainingArgs())
	return err
}

func assemble(ctx context.Context, md *modalflag.Modes, stderr io.Writer) error {
	md.NewMode()

	output := md.AddString("o", "", "path of the object file (required)")
	echo := addLogFlag(md, stderr)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	echo()

	if *output == "" {
		return fmt.Errorf("output file required for %s mode", md)
	}

	tl, err := tools(md, stderr)
	if err != nil {
		return err
	}

	a := &pipeline.Assembler{Tools: tl, Output: *output}
	_, err = a.Run(ctx, md.RemainingArgs())
	return err
}

func link(ctx context.Context, md *modalflag.Modes, stderr io.Writer) error {
	md.NewMode()

	output := md.AddString("o", "", "path of the linked object file (required)")
	tgt := md.AddString("t", target.Default.String(), fmt.Sprintf("target ROM version: %s", target.Tags()))
	release := md.AddBool("release", false, "optimise the link")
	echo := addLogFlag(md, stderr)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	echo()

	if *output == "" {
		return fmt.Errorf("output file required for %s mode", md)
	}

	t, err := target.Parse(*tgt)
	if err != nil {
		return err
	}

	tl, err := tools(md, stderr)
	if err != nil {
		return err
	}

	l := &pipeline.Linker{Tools: tl, Output: *output, Target: t, Release: *release}
	_, err = l.Run(ctx, md.RemainingArgs())
	return err
}

func prepareLinker(md *modalflag.Modes, stderr io.Writer) error {
	md.NewMode()

	csv := md.AddString("csv", paths.ResourcePath(paths.Templates, memoryTable), "path of the memory table")
	dir := md.AddString("dir", paths.ResourcePath(paths.Templates), "directory for the linker scripts")
	echo := addLogFlag(md, stderr)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	echo()

	if len(md.RemainingArgs()) > 0 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	tables, err := memtable.Load(*csv)
	if err != nil {
		return err
	}

	written, err := memtable.WriteLinkerScripts(tables, *dir)
	for _, w := range written {
		fmt.Fprintf(md.Output, "Linker script written to %s.\n", filepath.Clean(w))
	}

	return err
}

func pj64sym(md *modalflag.Modes, stderr io.Writer) error {
	md.NewMode()

	csv := md.AddString("csv", paths.ResourcePath(paths.Templates, memoryTable), "path of the memory table")
	tgt := md.AddString("t", "", fmt.Sprintf("target ROM version (required): %s", target.Tags()))
	output := md.AddString("o", "", "path of the symbols file (required)")
	echo := addLogFlag(md, stderr)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	echo()

	if *tgt == "" {
		return fmt.Errorf("target required for %s mode", md)
	}
	if *output == "" {
		return fmt.Errorf("output file required for %s mode", md)
	}

	t, err := target.Parse(*tgt)
	if err != nil {
		return err
	}

	tables, err := memtable.Load(*csv)
	if err != nil {
		return err
	}

	tab, err := tables.Table(t)
	if err != nil {
		return err
	}

	err = memtable.WriteProject64Symbols(tab, *output)
	if err != nil {
		return err
	}

	fmt.Fprintf(md.Output, "Project64 symbols written to %s.\n", *output)

	return nil
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	revision := md.AddBool("revision", false, "display revision information")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	ver, rev, _ := version.Version()
	fmt.Fprintf(md.Output, "%s %s\n", version.ApplicationName, ver)
	if *revision {
		fmt.Fprintln(md.Output, rev)
	}

	return nil
}
