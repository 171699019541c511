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

// Error patterns for the overlay package. The first value of every pattern is
// the path of the input file, with the exception of IOError where it is the
// path of the output file.
const (
	MissingSection     = "overlay: %s: %s"
	MissingSegment     = "overlay: %s: could not find executable program segment"
	MissingSymbolTable = "overlay: %s: no symbol table"
	MissingInitSymbol  = "overlay: %s: could not locate initialisation structure with symbol name %s"
	OffsetRange        = "overlay: %s: %s offset %#x is out of range"
	UnsupportedType    = "overlay: %s: %s: relocation type %d cannot be encoded"
	IOError            = "overlay: %s: %v"
	Malformed          = "overlay: malformed overlay file: %s"
)
