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

// Package reloc decodes the records of an ELF32 SHT_REL relocation section.
//
// Each record is eight bytes: the offset of the location being relocated,
// followed by an info word. The symbol table index is in the upper 24 bits of
// the info word and the relocation type is in the lower 8 bits.
package reloc

import (
	"encoding/binary"
	"fmt"

	"github.com/z64tools/z64ovl/curated"
)

// FormatError is the pattern for a relocation section with a length that is
// not a multiple of RecordSize. The first value is the name of the section.
const FormatError = "reloc: %s: length of %d bytes is not a multiple of the record size"

// RecordSize is the size in bytes of a single SHT_REL record in an ELF32 file.
const RecordSize = 8

// Type is a MIPS relocation type.
type Type uint8

// List of MIPS relocation types.
const (
	R_MIPS_NONE    Type = 0
	R_MIPS_16      Type = 1
	R_MIPS_32      Type = 2
	R_MIPS_REL32   Type = 3
	R_MIPS_26      Type = 4
	R_MIPS_HI16    Type = 5
	R_MIPS_LO16    Type = 6
	R_MIPS_GPREL16 Type = 7
	R_MIPS_LITERAL Type = 8
	R_MIPS_GOT16   Type = 9
	R_MIPS_PC16    Type = 10
	R_MIPS_CALL16  Type = 11
	R_MIPS_GPREL32 Type = 12
)

var typeNames = map[Type]string{
	R_MIPS_NONE:    "R_MIPS_NONE",
	R_MIPS_16:      "R_MIPS_16",
	R_MIPS_32:      "R_MIPS_32",
	R_MIPS_REL32:   "R_MIPS_REL32",
	R_MIPS_26:      "R_MIPS_26",
	R_MIPS_HI16:    "R_MIPS_HI16",
	R_MIPS_LO16:    "R_MIPS_LO16",
	R_MIPS_GPREL16: "R_MIPS_GPREL16",
	R_MIPS_LITERAL: "R_MIPS_LITERAL",
	R_MIPS_GOT16:   "R_MIPS_GOT16",
	R_MIPS_PC16:    "R_MIPS_PC16",
	R_MIPS_CALL16:  "R_MIPS_CALL16",
	R_MIPS_GPREL32: "R_MIPS_GPREL32",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("R_MIPS_%d", uint8(t))
}

// Relocation is a single decoded relocation record.
type Relocation struct {
	Offset uint32
	Symbol uint32
	Type   Type
}

func (r Relocation) String() string {
	return fmt.Sprintf("%08x %s sym=%d", r.Offset, r.Type, r.Symbol)
}

// Decode the records in data. The order of the records is preserved. The name
// argument is used for error messages only.
func Decode(name string, data []byte, order binary.ByteOrder) ([]Relocation, error) {
	if len(data)%RecordSize != 0 {
		return nil, curated.Errorf(FormatError, name, len(data))
	}

	rels := make([]Relocation, 0, len(data)/RecordSize)
	for i := 0; i < len(data); i += RecordSize {
		info := order.Uint32(data[i+4 : i+8])
		rels = append(rels, Relocation{
			Offset: order.Uint32(data[i : i+4]),
			Symbol: info >> 8,
			Type:   Type(info & 0xff),
		})
	}

	return rels, nil
}
