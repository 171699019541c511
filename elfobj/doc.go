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

// Package elfobj reads a linked ELF32 big-endian object file into a simple data
// model of sections, segments and symbols. It is a thin layer over the
// debug/elf package in the standard library.
//
// The model preserves the order of everything as it appears in the file. In
// particular, the Symbols field of the Object type is indexed in the same way
// as the symbol index in a relocation record: index zero is the null symbol
// and is always present if the file has a symbol table.
//
// Any problem with the file is returned as a curated error with the ParseError
// pattern.
package elfobj
