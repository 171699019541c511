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

import "strings"

// Section is the classification of a relocation by the section that it
// patches.
type Section uint8

// List of valid Section values. The values are those used in the packed
// relocation word.
const (
	Unknown Section = 0
	Text    Section = 1
	Data    Section = 2
	Rodata  Section = 3
	Bss     Section = 4
)

func (s Section) String() string {
	switch s {
	case Text:
		return ".text"
	case Data:
		return ".data"
	case Rodata:
		return ".rodata"
	case Bss:
		return ".bss"
	}
	return "unknown"
}

// Classify returns the Section for the named ELF section.
func Classify(name string) Section {
	switch name {
	case ".text":
		return Text
	case ".data":
		return Data
	case ".rodata":
		return Rodata
	case ".bss":
		return Bss
	}
	return Unknown
}

// relocationPrefix is the prefix of a SHT_REL section's name. The rest of the
// name is the name of the section being relocated.
const relocationPrefix = ".rel"

// ClassifyRelocationSection returns the Section patched by the named relocation
// section. For example, ".rel.text" is classified as Text. Names that don't
// follow the convention are Unknown.
func ClassifyRelocationSection(name string) Section {
	if !strings.HasPrefix(name, relocationPrefix+".") {
		return Unknown
	}
	return Classify(strings.TrimPrefix(name, relocationPrefix))
}
