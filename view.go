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
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bradleyjkemp/memviz"

	"github.com/z64tools/z64ovl/elfobj"
	"github.com/z64tools/z64ovl/modalflag"
	"github.com/z64tools/z64ovl/overlay"
	"github.com/z64tools/z64ovl/reloc"
)

func view(md *modalflag.Modes, stderr io.Writer) error {
	md.NewMode()

	isOverlay := md.AddBool("overlay", false, "file is an overlay and not an ELF file")
	dot := md.AddBool("dot", false, "output a graphviz representation of the parsed file")
	echo := addLogFlag(md, stderr)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}
	echo()

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("file required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	if *isOverlay {
		ovl, err := overlay.ReadFile(md.GetArg(0))
		if err != nil {
			return err
		}
		if *dot {
			memviz.Map(md.Output, ovl)
			return nil
		}
		return viewOverlay(md.Output, ovl)
	}

	obj, err := elfobj.Open(md.GetArg(0))
	if err != nil {
		return err
	}
	if *dot {
		memviz.Map(md.Output, obj)
		return nil
	}
	return viewObject(md.Output, obj)
}

func viewObject(output io.Writer, obj *elfobj.Object) error {
	w := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "%s: %s %s\n\n", obj.Path, obj.Machine, obj.Type)

	fmt.Fprintln(w, "Sections")
	fmt.Fprintln(w, "idx\tname\ttype\taddr\tsize\tlink\tinfo\tflags")
	for _, s := range obj.Sections {
		if s.Index == 0 {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%08x\t%x\t%d\t%d\t%s\n", s.Index, s.Name, s.Kind, s.Addr, s.Size, s.Link, s.Info, s.Flags)
	}

	fmt.Fprintln(w, "\nSegments")
	fmt.Fprintln(w, "type\tflags\tvaddr\tfilesz\tmemsz")
	for _, s := range obj.Segments {
		fmt.Fprintf(w, "%s\t%s\t%08x\t%x\t%x\n", s.Type, s.Flags, s.Vaddr, len(s.Data), s.Memsz)
	}

	if obj.Symbols != nil {
		fmt.Fprintln(w, "\nSymbols")
		fmt.Fprintln(w, "idx\tvalue\tsize\tbind\ttype\tsection\tname")
		for _, s := range obj.Symbols[1:] {
			fmt.Fprintf(w, "%d\t%08x\t%x\t%s\t%s\t%s\t%s\n", s.Index, s.Value, s.Size, s.Binding, s.Type, s.SectionName(), s.Name)
		}
	}

	for _, sec := range obj.Sections {
		if sec.Kind != elfobj.KindRelocation {
			continue
		}

		rels, err := reloc.Decode(sec.Name, sec.Data, obj.ByteOrder)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\nRelocations in %s (%d)\n", sec.Name, len(rels))
		fmt.Fprintln(w, "offset\ttype\tsymbol")
		for _, r := range rels {
			name := fmt.Sprintf("#%d", r.Symbol)
			if int(r.Symbol) < len(obj.Symbols) {
				s := obj.Symbols[r.Symbol]
				switch {
				case s.Name != "":
					name = s.Name
				case s.Section != nil:
					name = s.Section.Name
				}
			}
			fmt.Fprintf(w, "%08x\t%s\t%s\n", r.Offset, r.Type, name)
		}
	}

	return w.Flush()
}

func viewOverlay(output io.Writer, ovl *overlay.Overlay) error {
	w := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "code\t%x bytes (including padding)\n", len(ovl.Code))
	fmt.Fprintf(w, "header\tat %x\n", ovl.HeaderOffset)
	fmt.Fprintf(w, ".text\t%x\n", ovl.Header.TextSize)
	fmt.Fprintf(w, ".data\t%x\n", ovl.Header.DataSize)
	fmt.Fprintf(w, ".rodata\t%x\n", ovl.Header.RodataSize)
	fmt.Fprintf(w, ".bss\t%x\n", ovl.Header.BssSize)

	fmt.Fprintf(w, "\nRelocations (%d)\n", len(ovl.Relocations))
	fmt.Fprintln(w, "word\tsection\ttype\toffset")
	for _, r := range ovl.Relocations {
		fmt.Fprintf(w, "%08x\t%s\t%s\t%06x\n", r.Pack(), r.Section, r.Type, r.Offset)
	}

	return w.Flush()
}
