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

import "encoding/binary"

// placeholder values written by the compatibility patch. tools that insert the
// overlay into a ROM replace these with the real actor and object IDs
const (
	PlaceholderActorID  = 0xdead
	PlaceholderObjectID = 0xbeef
)

// offsets of the ID fields in the initialisation structure. these follow the
// ActorInit layout: s16 actorID, u8 actorType, s8 roomNumber, u32 flags,
// s16 objectID. the object ID is at +0x08 and not +0x0a
const (
	actorIDField  = 0x00
	objectIDField = 0x08
	idFieldSize   = 2
)

// patch the initialisation structure in the code with placeholder ID values.
// returns the offset of the structure and false if the structure does not lie
// within the code.
func (ovl *Overlay) patch() (uint32, bool) {
	offset, ok := ovl.InitOffset()
	if !ok {
		return 0, false
	}
	if ovl.Init.Value < ovl.LoadAddress || uint64(offset)+objectIDField+idFieldSize > uint64(len(ovl.Code)) {
		return ovl.Init.Value, false
	}

	binary.BigEndian.PutUint16(ovl.Code[offset+actorIDField:], PlaceholderActorID)
	binary.BigEndian.PutUint16(ovl.Code[offset+objectIDField:], PlaceholderObjectID)

	return offset, true
}
