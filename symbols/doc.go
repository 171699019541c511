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

// Package symbols looks up symbols in the symbol table of an ELF object and
// decides which symbols are to be ignored when collecting relocations.
//
// There are two policies for ignoring symbols. FilterMetadata ignores symbols
// owned by the .reginfo section, which describes register usage and is never
// loaded. FilterNonLocal ignores every symbol that is not bound locally, which
// is how early versions of the toolchain worked. The two policies are never
// combined.
package symbols
