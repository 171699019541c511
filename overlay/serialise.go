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
	"bytes"
	"encoding/binary"
	"os"

	"github.com/z64tools/z64ovl/curated"
)

// alignment of the header and of the end of the file.
const (
	headerAlignment  = 16
	trailerAlignment = 12
	wordSize         = 4
	headerSize       = 5 * wordSize
)

func pad(buf *bytes.Buffer, modulus int, remainder int) {
	for buf.Len()%modulus != remainder {
		buf.WriteByte(0)
	}
}

// Bytes returns the serialised overlay.
func (ovl *Overlay) Bytes() []byte {
	be := binary.BigEndian

	var buf bytes.Buffer
	buf.Grow(len(ovl.Code) + headerAlignment + headerSize + len(ovl.Relocations)*wordSize + headerAlignment)

	buf.Write(ovl.Code)
	pad(&buf, headerAlignment, 0)

	headerStart := buf.Len()

	var w [wordSize]byte
	word := func(v uint32) {
		be.PutUint32(w[:], v)
		buf.Write(w[:])
	}

	word(ovl.Header.TextSize)
	word(ovl.Header.DataSize)
	word(ovl.Header.RodataSize)
	word(ovl.Header.BssSize)
	word(uint32(len(ovl.Relocations)))
	for _, r := range ovl.Relocations {
		word(r.Pack())
	}

	pad(&buf, headerAlignment, trailerAlignment)

	// distance from the end of the file, including the offset word itself,
	// back to the start of the header
	word(uint32(buf.Len() + wordSize - headerStart))

	return buf.Bytes()
}

// WriteFile serialises the overlay to the named file. The file is created or
// truncated. If an error is returned the file may be partially written.
func (ovl *Overlay) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return curated.Errorf(IOError, path, err)
	}

	_, err = f.Write(ovl.Bytes())
	if err != nil {
		f.Close()
		return curated.Errorf(IOError, path, err)
	}

	err = f.Close()
	if err != nil {
		return curated.Errorf(IOError, path, err)
	}

	return nil
}
