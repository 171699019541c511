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

// Package overlay converts a linked ELF object into an overlay file that can
// be loaded by the game at an address that is not known at link time.
//
// An overlay file is laid out as follows. All values are big-endian.
//
//	code                   contents of the executable segment
//	padding                zero bytes to the next 16 byte boundary
//	header                 four words: size of .text, .data, .rodata, .bss
//	relocation count       one word
//	relocations            one word per relocation
//	padding                zero bytes until the position is 12 modulo 16
//	reverse offset         one word: distance from the end of the file back
//	                       to the first byte of the header
//
// A relocation word is packed as: bits 31-30 section, bits 29-24 relocation
// type, bits 23-0 offset from the start of the code. See the Relocation type.
//
// The section field has room for .text, .data and .rodata only. Records in a
// .rel.bss section are dropped and logged. An object with no executable
// segment, accepted with Options.ForceNoProgram, has no load address and so
// produces an overlay with no relocations.
//
// Generate() performs all the validation and builds the overlay in memory.
// Nothing is written to disk until Generate() has succeeded, so a validation
// failure never leaves an output file behind. A failure while writing the
// file can leave a partially written file, which must not be trusted.
//
// Read() performs the reverse operation and is used by the VIEW mode and by
// the tests.
package overlay
