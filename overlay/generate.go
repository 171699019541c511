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

package overlay

import (
	"fmt"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/elfobj"
	"github.com/z64tools/z64ovl/logger"
	"github.com/z64tools/z64ovl/reloc"
	"github.com/z64tools/z64ovl/symbols"
)

// DefaultInitSymbol is the name of the symbol that locates the actor
// initialisation structure when Options.InitSymbol is empty.
const DefaultInitSymbol = "INIT"

// Options controls how an overlay is generated and reported.
type Options struct {
	// path of the overlay file. used by Convert() only
	Output string

	// allow generation of an overlay from an object with no executable
	// program segment. the code will be empty and, with no load address to
	// rebase against, no relocations are collected
	ForceNoProgram bool

	// report the location of the initialisation structure
	ShowInitAddress bool

	// report in a machine readable form
	Porcelain bool

	// name of the symbol to use for ShowInitAddress and CompatibilityPatch
	InitSymbol string

	// write placeholder values into the actor and object ID fields of the
	// initialisation structure
	CompatibilityPatch bool

	// policy for ignoring relocations by the symbol they refer to
	Filter symbols.Filter
}

func (opts Options) initSymbol() string {
	if opts.InitSymbol == "" {
		return DefaultInitSymbol
	}
	return opts.InitSymbol
}

func (opts Options) needsInit() bool {
	return opts.ShowInitAddress || opts.CompatibilityPatch
}

// Header is the section size information that precedes the relocations.
type Header struct {
	TextSize   uint32
	DataSize   uint32
	RodataSize uint32
	BssSize    uint32
}

// Overlay is a generated overlay prior to serialisation, or an overlay
// recovered from a file with Read().
type Overlay struct {
	// address that the code was linked to run at. the relocation offsets are
	// relative to this address. always zero for an overlay returned by Read()
	LoadAddress uint32

	// for an overlay returned by Read() the code includes the padding that
	// precedes the header
	Code []byte

	Header      Header
	Relocations []Relocation

	// the initialisation structure symbol. nil if it was not located
	Init *elfobj.Symbol

	// offset of the header in the serialised overlay. only valid for an
	// overlay returned by Read()
	HeaderOffset int
}

// InitOffset returns the offset of the initialisation structure from the start
// of the code. The boolean is false if the structure was not located.
func (ovl *Overlay) InitOffset() (uint32, bool) {
	if ovl.Init == nil {
		return 0, false
	}
	return ovl.Init.Value - ovl.LoadAddress, true
}

// size of a section or zero if the section does not exist.
func sectionSize(obj *elfobj.Object, name string) uint32 {
	if s := obj.Section(name); s != nil {
		return s.Size
	}
	return 0
}

// Generate an overlay from the ELF object. The object is not modified.
func Generate(obj *elfobj.Object, opts Options) (*Overlay, error) {
	if obj.Section(".text") == nil {
		return nil, curated.Errorf(MissingSection, obj.Path, "could not find .text section")
	}
	if obj.Section(".data") == nil && obj.Section(".rodata") == nil {
		return nil, curated.Errorf(MissingSection, obj.Path, "could not find .data or .rodata section")
	}

	ovl := &Overlay{
		Header: Header{
			TextSize:   sectionSize(obj, ".text"),
			DataSize:   sectionSize(obj, ".data"),
			RodataSize: sectionSize(obj, ".rodata"),
			BssSize:    sectionSize(obj, ".bss"),
		},
	}

	seg := obj.ExecutableSegment()
	if seg == nil {
		if !opts.ForceNoProgram {
			return nil, curated.Errorf(MissingSegment, obj.Path)
		}
		logger.Logf(logger.Allow, "OVERLAY", "%s: no executable segment. code and relocations will be empty", obj.Path)
	} else {
		ovl.LoadAddress = seg.Vaddr
		ovl.Code = make([]byte, len(seg.Data))
		copy(ovl.Code, seg.Data)
	}

	if obj.SymbolTable() == nil {
		if opts.needsInit() {
			return nil, curated.Errorf(MissingSymbolTable, obj.Path)
		}
		logger.Logf(logger.Allow, "OVERLAY", "%s: no symbol table", obj.Path)
	}

	if seg != nil {
		var err error
		ovl.Relocations, err = collect(obj, ovl.LoadAddress, opts.Filter)
		if err != nil {
			return nil, err
		}
	}

	if obj.SymbolTable() != nil {
		ovl.Init = symbols.Find(obj.Symbols, opts.initSymbol())
	}
	if ovl.Init == nil && opts.needsInit() {
		return nil, curated.Errorf(MissingInitSymbol, obj.Path, opts.initSymbol())
	}

	if opts.CompatibilityPatch {
		if offset, ok := ovl.patch(); !ok {
			return nil, curated.Errorf(OffsetRange, obj.Path, opts.initSymbol(), offset)
		}
	}

	logger.Logf(logger.Allow, "OVERLAY", "%s: %d bytes of code, %d relocations", obj.Path, len(ovl.Code), len(ovl.Relocations))

	return ovl, nil
}

// collect the relocations of every SHT_REL section in the object. The order
// of the result follows the order of the sections in the file and the order
// of the records within each section.
//
// A section code must fit in two bits so the records of .rel.bss are dropped.
// A correctly linked object never relocates NOBITS data.
func collect(obj *elfobj.Object, loadAddress uint32, filter symbols.Filter) ([]Relocation, error) {
	var rels []Relocation

	for _, sec := range obj.Sections {
		switch sec.Kind {
		case elfobj.KindRelocationAddend:
			logger.Logf(logger.Allow, "RELOC", "%s: ignoring %s (SHT_RELA)", obj.Path, sec.Name)
			continue
		case elfobj.KindRelocation:
		default:
			continue
		}

		section := ClassifyRelocationSection(sec.Name)
		if section == Unknown {
			logger.Logf(logger.Allow, "RELOC", "%s: ignoring %s", obj.Path, sec.Name)
			continue
		}
		if section > maxSection {
			logger.Logf(logger.Allow, "RELOC", "%s: dropping %d records from %s (%s cannot be encoded)",
				obj.Path, len(sec.Data)/reloc.RecordSize, sec.Name, section)
			continue
		}

		syms, err := obj.LinkedSymbols(sec)
		if err != nil {
			return nil, err
		}

		records, err := reloc.Decode(sec.Name, sec.Data, obj.ByteOrder)
		if err != nil {
			return nil, curated.Errorf(elfobj.ParseError, obj.Path, err)
		}

		for _, r := range records {
			if int(r.Symbol) >= len(syms) {
				return nil, curated.Errorf(elfobj.ParseError, obj.Path,
					fmt.Sprintf("%s: symbol index %d is out of range", sec.Name, r.Symbol))
			}

			sym := syms[r.Symbol]
			if filter.Skip(sym) {
				logger.Logf(logger.Verbose, "RELOC", "%s: skipping relocation at %#08x (%s filter: %s)", sec.Name, r.Offset, filter, sym.Name)
				continue
			}

			if r.Offset < loadAddress || r.Offset-loadAddress > MaxOffset {
				return nil, curated.Errorf(OffsetRange, obj.Path, sec.Name, r.Offset)
			}

			rel := Relocation{
				Section: section,
				Type:    r.Type,
				Offset:  r.Offset - loadAddress,
			}

			if rel.Type > maxType {
				return nil, curated.Errorf(UnsupportedType, obj.Path, sec.Name, rel.Type)
			}

			rels = append(rels, rel)
		}
	}

	return rels, nil
}
