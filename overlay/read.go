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
	"encoding/binary"
	"fmt"
	"os"

	"github.com/z64tools/z64ovl/curated"
)

// ReadFile reads and parses the overlay file at path.
func ReadFile(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf(IOError, path, err)
	}
	return Read(data)
}

// Read parses a serialised overlay. The header is located with the reverse
// offset stored in the final word of the data.
func Read(data []byte) (*Overlay, error) {
	be := binary.BigEndian

	if len(data) < headerSize+wordSize {
		return nil, curated.Errorf(Malformed, fmt.Sprintf("%d bytes is too short", len(data)))
	}
	if len(data)%wordSize != 0 {
		return nil, curated.Errorf(Malformed, fmt.Sprintf("length of %d bytes is not a multiple of %d", len(data), wordSize))
	}

	reverse := be.Uint32(data[len(data)-wordSize:])
	if reverse < headerSize+wordSize || uint64(reverse) > uint64(len(data)) {
		return nil, curated.Errorf(Malformed, fmt.Sprintf("reverse offset %#x is out of range", reverse))
	}

	start := len(data) - int(reverse)
	if start%wordSize != 0 {
		return nil, curated.Errorf(Malformed, fmt.Sprintf("header at %#x is not word aligned", start))
	}

	ovl := &Overlay{
		Code:         data[:start],
		HeaderOffset: start,
		Header: Header{
			TextSize:   be.Uint32(data[start:]),
			DataSize:   be.Uint32(data[start+4:]),
			RodataSize: be.Uint32(data[start+8:]),
			BssSize:    be.Uint32(data[start+12:]),
		},
	}

	count := be.Uint32(data[start+16:])
	tab := start + headerSize
	if uint64(tab)+uint64(count)*wordSize > uint64(len(data)-wordSize) {
		return nil, curated.Errorf(Malformed, fmt.Sprintf("%d relocations do not fit in the file", count))
	}

	ovl.Relocations = make([]Relocation, count)
	for i := range ovl.Relocations {
		ovl.Relocations[i] = Unpack(be.Uint32(data[tab+i*wordSize:]))
	}

	return ovl, nil
}
