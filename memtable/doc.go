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

// Package memtable reads the memory table and generates the files that depend
// on it.
//
// The memory table is a CSV file listing the location of every known function
// and variable in the code segment of each version of the game. The first
// line is a header and is ignored. Blank lines and lines beginning with '#' are
// also ignored. Every other line has nine fields:
//
//	symbol, category, 1.0U, 1.1U, 1.2U, 1.0E, 1.1E, MQU, DEBUG
//
// The version fields are hexadecimal offsets from the start of the code
// segment. A zero, empty or unparsable offset means that the symbol is not
// present in that version.
//
// From the table a linker script can be generated for each target (see
// LinkerScript()) along with a Project64 symbols file (see Project64Symbols()).
package memtable
