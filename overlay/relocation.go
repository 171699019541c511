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

	"github.com/z64tools/z64ovl/reloc"
)

// limits of the fields in a packed relocation word.
const (
	MaxOffset  = 0x00ffffff
	maxType    = 0x3f
	maxSection = 0x03
)

// Relocation is a single relocation record in an overlay file. The offset is
// relative to the start of the code and not an absolute address.
type Relocation struct {
	Section Section
	Type    reloc.Type
	Offset  uint32
}

func (r Relocation) String() string {
	return fmt.Sprintf("%-7s %-14s %06x", r.Section, r.Type, r.Offset)
}

// Pack the relocation into a single word. The relocation must have been
// checked by Generate() or the result will be truncated.
func (r Relocation) Pack() uint32 {
	return uint32(r.Section&maxSection)<<30 | uint32(r.Type&maxType)<<24 | r.Offset&MaxOffset
}

// Unpack a relocation word.
func Unpack(w uint32) Relocation {
	return Relocation{
		Section: Section(w >> 30),
		Type:    reloc.Type((w >> 24) & maxType),
		Offset:  w & MaxOffset,
	}
}
