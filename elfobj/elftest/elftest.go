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

// Package elftest builds ELF32 big-endian MIPS object files in memory. It
// exists so that tests can create exactly the object they need without relying
// on an external compiler and linker.
//
// The section header table of the generated file begins with the null section,
// followed by the sections in the order they were added, followed by .symtab,
// .strtab and .shstrtab (in that order). The symbol table begins with the null
// symbol so the first symbol added has index 1.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"strings"
)

// SHT_MIPS_REGINFO is the section type of the .reginfo section.
const SHT_MIPS_REGINFO = elf.SectionType(0x70000006)

// Rel is a single relocation record.
type Rel struct {
	Offset uint32
	Symbol uint32
	Type   uint8
}

type section struct {
	name   string
	typ    elf.SectionType
	flags  elf.SectionFlag
	addr   uint32
	size   uint32
	data   []byte
	entry  uint32
	align  uint32
	link   int
	info   int
	target string
}

type symbol struct {
	name    string
	value   uint32
	size    uint32
	bind    elf.SymBind
	typ     elf.SymType
	section string
	shndx   elf.SectionIndex
}

type segment struct {
	typ   elf.ProgType
	flags elf.ProgFlag
	vaddr uint32
	data  []byte
	memsz uint32
}

// Builder accumulates sections, symbols and segments for an ELF file.
type Builder struct {
	Machine elf.Machine
	Type    elf.Type

	// no symbol table, string table for symbols, will be created
	NoSymbolTable bool

	sections []*section
	symbols  []symbol
	segments []segment
}

// NewBuilder is the preferred method of initialisation for the Builder type.
func NewBuilder() *Builder {
	return &Builder{
		Machine: elf.EM_MIPS,
		Type:    elf.ET_EXEC,
	}
}

// AddSection adds a section with data. The size of the section is the length of
// the data.
func (b *Builder) AddSection(name string, typ elf.SectionType, flags elf.SectionFlag, addr uint32, data []byte) {
	b.sections = append(b.sections, &section{
		name:  name,
		typ:   typ,
		flags: flags,
		addr:  addr,
		size:  uint32(len(data)),
		data:  data,
		align: 16,
	})
}

// AddText is a convenience function that adds an executable .text section.
func (b *Builder) AddText(addr uint32, data []byte) {
	b.AddSection(".text", elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_EXECINSTR, addr, data)
}

// AddData is a convenience function that adds a writable data section with
// the given name.
func (b *Builder) AddData(name string, addr uint32, data []byte) {
	b.AddSection(name, elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_WRITE, addr, data)
}

// AddNoBits adds a section of type SHT_NOBITS.
func (b *Builder) AddNoBits(name string, addr uint32, size uint32) {
	b.sections = append(b.sections, &section{
		name:  name,
		typ:   elf.SHT_NOBITS,
		flags: elf.SHF_ALLOC | elf.SHF_WRITE,
		addr:  addr,
		size:  size,
		align: 16,
	})
}

// AddRegInfo adds a MIPS register usage information section.
func (b *Builder) AddRegInfo() {
	b.sections = append(b.sections, &section{
		name:  ".reginfo",
		typ:   SHT_MIPS_REGINFO,
		flags: elf.SHF_ALLOC,
		size:  24,
		data:  make([]byte, 24),
		entry: 24,
		align: 4,
	})
}

// AddRelocations adds a SHT_REL section with the records encoded in the order
// given. The section relocated by the records is found by removing the ".rel"
// prefix from the name. If there is no such section the info field is zero.
func (b *Builder) AddRelocations(name string, rels []Rel) {
	data := make([]byte, 0, len(rels)*8)
	for _, r := range rels {
		data = binary.BigEndian.AppendUint32(data, r.Offset)
		data = binary.BigEndian.AppendUint32(data, r.Symbol<<8|uint32(r.Type))
	}
	b.AddRelocationData(name, data)
}

// AddRelocationData adds a SHT_REL section with raw data.
func (b *Builder) AddRelocationData(name string, data []byte) {
	b.sections = append(b.sections, &section{
		name:   name,
		typ:    elf.SHT_REL,
		size:   uint32(len(data)),
		data:   data,
		entry:  8,
		align:  4,
		target: strings.TrimPrefix(name, ".rel"),
	})
}

// AddSymbol adds a symbol owned by the named section. An empty section name
// creates an undefined symbol. Returns the index of the symbol.
func (b *Builder) AddSymbol(name string, value uint32, bind elf.SymBind, typ elf.SymType, section string) uint32 {
	b.symbols = append(b.symbols, symbol{
		name:    name,
		value:   value,
		bind:    bind,
		typ:     typ,
		section: section,
	})
	return uint32(len(b.symbols))
}

// AddAbsSymbol adds an absolute symbol. Returns the index of the symbol.
func (b *Builder) AddAbsSymbol(name string, value uint32, bind elf.SymBind) uint32 {
	b.symbols = append(b.symbols, symbol{
		name:  name,
		value: value,
		bind:  bind,
		typ:   elf.STT_NOTYPE,
		shndx: elf.SHN_ABS,
	})
	return uint32(len(b.symbols))
}

// AddSegment adds a PT_LOAD program header.
func (b *Builder) AddSegment(flags elf.ProgFlag, vaddr uint32, data []byte) {
	b.segments = append(b.segments, segment{
		typ:   elf.PT_LOAD,
		flags: flags,
		vaddr: vaddr,
		data:  data,
		memsz: uint32(len(data)),
	})
}

type strtab struct {
	data []byte
	idx  map[string]uint32
}

func newStrtab() *strtab {
	return &strtab{data: []byte{0}, idx: map[string]uint32{"": 0}}
}

func (s *strtab) add(str string) uint32 {
	if i, ok := s.idx[str]; ok {
		return i
	}
	i := uint32(len(s.data))
	s.data = append(s.data, str...)
	s.data = append(s.data, 0)
	s.idx[str] = i
	return i
}

func align(buf *bytes.Buffer, n int) {
	for buf.Len()%n != 0 {
		buf.WriteByte(0)
	}
}

const (
	ehdrSize = 52
	phdrSize = 32
	shdrSize = 40
	symSize  = 16
)

// Bytes returns the ELF file.
func (b *Builder) Bytes() []byte {
	be := binary.BigEndian

	// final list of sections. index zero is the null section
	secs := []*section{{}}
	secs = append(secs, b.sections...)

	index := func(name string) int {
		for i, s := range secs {
			if i > 0 && s.name == name {
				return i
			}
		}
		return 0
	}

	var symtabIdx int
	if !b.NoSymbolTable {
		symtabIdx = len(secs)
		strtabIdx := symtabIdx + 1

		strs := newStrtab()
		syms := make([]byte, symSize)
		locals := 1
		for _, s := range b.symbols {
			shndx := s.shndx
			if s.section != "" {
				shndx = elf.SectionIndex(index(s.section))
			}
			syms = be.AppendUint32(syms, strs.add(s.name))
			syms = be.AppendUint32(syms, s.value)
			syms = be.AppendUint32(syms, s.size)
			syms = append(syms, elf.ST_INFO(s.bind, s.typ), 0)
			syms = be.AppendUint16(syms, uint16(shndx))
			if s.bind == elf.STB_LOCAL {
				locals++
			}
		}

		secs = append(secs, &section{
			name:  ".symtab",
			typ:   elf.SHT_SYMTAB,
			size:  uint32(len(syms)),
			data:  syms,
			entry: symSize,
			align: 4,
			link:  strtabIdx,
			info:  locals,
		})
		secs = append(secs, &section{
			name:  ".strtab",
			typ:   elf.SHT_STRTAB,
			size:  uint32(len(strs.data)),
			data:  strs.data,
			align: 1,
		})
	}

	for _, s := range secs {
		if s.typ == elf.SHT_REL {
			s.link = symtabIdx
			s.info = index(s.target)
		}
	}

	shstrs := newStrtab()
	shstrtabIdx := len(secs)
	secs = append(secs, &section{
		name:  ".shstrtab",
		typ:   elf.SHT_STRTAB,
		align: 1,
	})
	names := make([]uint32, len(secs))
	for i, s := range secs {
		if i > 0 {
			names[i] = shstrs.add(s.name)
		}
	}
	secs[shstrtabIdx].data = shstrs.data
	secs[shstrtabIdx].size = uint32(len(shstrs.data))

	// file body. program header table immediately follows the ELF header
	body := &bytes.Buffer{}
	body.Write(make([]byte, ehdrSize+phdrSize*len(b.segments)))

	segOffsets := make([]uint32, len(b.segments))
	for i, p := range b.segments {
		align(body, 16)
		segOffsets[i] = uint32(body.Len())
		body.Write(p.data)
	}

	secOffsets := make([]uint32, len(secs))
	for i, s := range secs {
		if i == 0 {
			continue
		}
		if s.align > 1 {
			align(body, int(s.align))
		}
		secOffsets[i] = uint32(body.Len())
		if s.typ != elf.SHT_NOBITS {
			body.Write(s.data)
		}
	}

	align(body, 4)
	shoff := uint32(body.Len())
	for i, s := range secs {
		hdr := make([]byte, 0, shdrSize)
		hdr = be.AppendUint32(hdr, names[i])
		hdr = be.AppendUint32(hdr, uint32(s.typ))
		hdr = be.AppendUint32(hdr, uint32(s.flags))
		hdr = be.AppendUint32(hdr, s.addr)
		hdr = be.AppendUint32(hdr, secOffsets[i])
		hdr = be.AppendUint32(hdr, s.size)
		hdr = be.AppendUint32(hdr, uint32(s.link))
		hdr = be.AppendUint32(hdr, uint32(s.info))
		hdr = be.AppendUint32(hdr, s.align)
		hdr = be.AppendUint32(hdr, s.entry)
		body.Write(hdr)
	}

	out := body.Bytes()

	// ELF header
	ehdr := make([]byte, 0, ehdrSize)
	ehdr = append(ehdr, 0x7f, 'E', 'L', 'F', byte(elf.ELFCLASS32), byte(elf.ELFDATA2MSB), byte(elf.EV_CURRENT))
	ehdr = append(ehdr, make([]byte, 9)...)
	ehdr = be.AppendUint16(ehdr, uint16(b.Type))
	ehdr = be.AppendUint16(ehdr, uint16(b.Machine))
	ehdr = be.AppendUint32(ehdr, uint32(elf.EV_CURRENT))
	ehdr = be.AppendUint32(ehdr, 0)
	if len(b.segments) > 0 {
		ehdr = be.AppendUint32(ehdr, ehdrSize)
	} else {
		ehdr = be.AppendUint32(ehdr, 0)
	}
	ehdr = be.AppendUint32(ehdr, shoff)
	ehdr = be.AppendUint32(ehdr, 0)
	ehdr = be.AppendUint16(ehdr, ehdrSize)
	ehdr = be.AppendUint16(ehdr, phdrSize)
	ehdr = be.AppendUint16(ehdr, uint16(len(b.segments)))
	ehdr = be.AppendUint16(ehdr, shdrSize)
	ehdr = be.AppendUint16(ehdr, uint16(len(secs)))
	ehdr = be.AppendUint16(ehdr, uint16(shstrtabIdx))
	copy(out, ehdr)

	// program headers
	for i, p := range b.segments {
		phdr := make([]byte, 0, phdrSize)
		phdr = be.AppendUint32(phdr, uint32(p.typ))
		phdr = be.AppendUint32(phdr, segOffsets[i])
		phdr = be.AppendUint32(phdr, p.vaddr)
		phdr = be.AppendUint32(phdr, p.vaddr)
		phdr = be.AppendUint32(phdr, uint32(len(p.data)))
		phdr = be.AppendUint32(phdr, p.memsz)
		phdr = be.AppendUint32(phdr, uint32(p.flags))
		phdr = be.AppendUint32(phdr, 16)
		copy(out[ehdrSize+i*phdrSize:], phdr)
	}

	return out
}

// WriteFile writes the ELF file to path.
func (b *Builder) WriteFile(path string) error {
	return os.WriteFile(path, b.Bytes(), 0644)
}
