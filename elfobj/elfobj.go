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

package elfobj

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/logger"
)

// ParseError is the pattern for all errors caused by a malformed ELF file. The
// first value is the path of the file and the second is the cause.
const ParseError = "elf: %s: %v"

// IOError is the pattern for a file that could not be opened. The first value
// is the path of the file and the second is the cause.
const IOError = "elf: cannot open %s: %v"

// SectionKind is a broad classification of a section by its type.
type SectionKind int

// List of valid SectionKind values.
const (
	KindOther SectionKind = iota
	KindProgram
	KindRelocation
	KindRelocationAddend
	KindSymbolTable
	KindStringTable
)

func (k SectionKind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindRelocation:
		return "rel"
	case KindRelocationAddend:
		return "rela"
	case KindSymbolTable:
		return "symtab"
	case KindStringTable:
		return "strtab"
	}
	return "other"
}

func kindOf(t elf.SectionType) SectionKind {
	switch t {
	case elf.SHT_PROGBITS, elf.SHT_NOBITS:
		return KindProgram
	case elf.SHT_REL:
		return KindRelocation
	case elf.SHT_RELA:
		return KindRelocationAddend
	case elf.SHT_SYMTAB:
		return KindSymbolTable
	case elf.SHT_STRTAB:
		return KindStringTable
	}
	return KindOther
}

// Section is a single section of the ELF file.
type Section struct {
	Index int
	Name  string
	Type  elf.SectionType
	Kind  SectionKind
	Flags elf.SectionFlag
	Addr  uint32
	Size  uint32
	Link  uint32
	Info  uint32

	// the contents of the section. always nil for SHT_NOBITS sections
	Data []byte
}

// Segment is a single program header and the data it refers to.
type Segment struct {
	Type  elf.ProgType
	Flags elf.ProgFlag
	Vaddr uint32
	Memsz uint32
	Data  []byte
}

// Executable returns true if the segment is flagged as executable.
func (s *Segment) Executable() bool {
	return s.Flags&elf.PF_X == elf.PF_X
}

// Symbol is a single entry in the symbol table.
type Symbol struct {
	Index        int
	Name         string
	Value        uint32
	Size         uint32
	Binding      elf.SymBind
	Type         elf.SymType
	SectionIndex elf.SectionIndex

	// the section that owns the symbol. nil for undefined, absolute and
	// common symbols
	Section *Section
}

// SectionName returns the name of the owning section or the empty string if
// there is no owning section.
func (sym *Symbol) SectionName() string {
	if sym.Section == nil {
		return ""
	}
	return sym.Section.Name
}

// Object is the parsed ELF file.
type Object struct {
	Path      string
	ByteOrder binary.ByteOrder
	Machine   elf.Machine
	Type      elf.Type

	Sections []*Section
	Segments []*Segment

	// nil if there is no symbol table in the file
	Symbols []*Symbol

	symtab *Section
	byName map[string]*Section
}

// Open and parse the ELF file at path. The file is closed before the function
// returns.
func Open(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, curated.Errorf(IOError, path, err)
	}
	defer f.Close()

	return NewObject(f, path)
}

// NewObject parses the ELF data available through the io.ReaderAt. The path
// argument is used for error messages only.
func NewObject(r io.ReaderAt, path string) (*Object, error) {
	ef, err := elf.NewFile(r)
	if err != nil {
		return nil, curated.Errorf(ParseError, path, err)
	}
	defer ef.Close()

	if ef.Class != elf.ELFCLASS32 {
		return nil, curated.Errorf(ParseError, path, "not a 32 bit ELF file")
	}
	if ef.ByteOrder != binary.BigEndian {
		return nil, curated.Errorf(ParseError, path, "not big-endian")
	}
	if ef.Machine != elf.EM_MIPS {
		logger.Logf(logger.Allow, "ELF", "%s: unexpected machine type (%s)", path, ef.Machine)
	}

	obj := &Object{
		Path:      path,
		ByteOrder: ef.ByteOrder,
		Machine:   ef.Machine,
		Type:      ef.Type,
		byName:    make(map[string]*Section),
	}

	for i, s := range ef.Sections {
		sec := &Section{
			Index: i,
			Name:  s.Name,
			Type:  s.Type,
			Kind:  kindOf(s.Type),
			Flags: s.Flags,
			Addr:  uint32(s.Addr),
			Size:  uint32(s.Size),
			Link:  s.Link,
			Info:  s.Info,
		}

		if s.Type != elf.SHT_NOBITS && s.Type != elf.SHT_NULL {
			sec.Data, err = s.Data()
			if err != nil {
				return nil, curated.Errorf(ParseError, path, fmt.Errorf("%s: %w", s.Name, err))
			}
		}

		if sec.Kind == KindSymbolTable {
			if obj.symtab != nil {
				return nil, curated.Errorf(ParseError, path, "more than one symbol table")
			}
			obj.symtab = sec
		}

		// the first section with a name takes precedence
		if _, ok := obj.byName[sec.Name]; !ok {
			obj.byName[sec.Name] = sec
		}

		obj.Sections = append(obj.Sections, sec)
	}

	for _, p := range ef.Progs {
		seg := &Segment{
			Type:  p.Type,
			Flags: p.Flags,
			Vaddr: uint32(p.Vaddr),
			Memsz: uint32(p.Memsz),
		}
		if p.Filesz > 0 {
			seg.Data, err = io.ReadAll(p.Open())
			if err != nil {
				return nil, curated.Errorf(ParseError, path, err)
			}
			if uint64(len(seg.Data)) != p.Filesz {
				return nil, curated.Errorf(ParseError, path, "truncated program segment")
			}
		}
		obj.Segments = append(obj.Segments, seg)
	}

	if obj.symtab != nil {
		syms, err := ef.Symbols()
		if err != nil && err != elf.ErrNoSymbols {
			return nil, curated.Errorf(ParseError, path, err)
		}

		// the standard library omits the null symbol. we add it back so that
		// relocation records can index the table directly
		obj.Symbols = make([]*Symbol, 0, len(syms)+1)
		obj.Symbols = append(obj.Symbols, &Symbol{Index: 0})

		for i, s := range syms {
			sym := &Symbol{
				Index:        i + 1,
				Name:         s.Name,
				Value:        uint32(s.Value),
				Size:         uint32(s.Size),
				Binding:      elf.ST_BIND(s.Info),
				Type:         elf.ST_TYPE(s.Info),
				SectionIndex: s.Section,
			}
			if s.Section != elf.SHN_UNDEF && s.Section < elf.SHN_LORESERVE {
				if int(s.Section) >= len(obj.Sections) {
					return nil, curated.Errorf(ParseError, path, fmt.Sprintf("symbol %s refers to section %d which does not exist", s.Name, s.Section))
				}
				sym.Section = obj.Sections[s.Section]
			}
			obj.Symbols = append(obj.Symbols, sym)
		}
	}

	logger.Logf(logger.Allow, "ELF", "%s: %d sections, %d segments, %d symbols", path, len(obj.Sections), len(obj.Segments), len(obj.Symbols))

	return obj, nil
}

// Section returns the named section or nil if it does not exist.
func (obj *Object) Section(name string) *Section {
	return obj.byName[name]
}

// SectionAt returns the section at the index or nil if the index is out of
// range.
func (obj *Object) SectionAt(idx uint32) *Section {
	if int(idx) >= len(obj.Sections) {
		return nil
	}
	return obj.Sections[idx]
}

// SymbolTable returns the symbol table section or nil if there isn't one.
func (obj *Object) SymbolTable() *Section {
	return obj.symtab
}

// ExecutableSegment returns the first segment flagged as executable or nil if
// there is no such segment.
func (obj *Object) ExecutableSegment() *Segment {
	for _, s := range obj.Segments {
		if s.Executable() {
			return s
		}
	}
	return nil
}

// LinkedSymbols returns the symbol table referred to by the link index of the
// section. Returns an error if the link index does not refer to the symbol
// table.
func (obj *Object) LinkedSymbols(sec *Section) ([]*Symbol, error) {
	linked := obj.SectionAt(sec.Link)
	if linked == nil || linked.Kind != KindSymbolTable {
		return nil, curated.Errorf(ParseError, obj.Path, fmt.Sprintf("%s does not link to a symbol table", sec.Name))
	}
	return obj.Symbols, nil
}
