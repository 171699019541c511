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

// Package pipeline wraps the external tools used to turn C source files into
// an overlay. There are three stages: the Compiler produces assembly files, the
// Assembler produces a single unlinked object and the Linker produces a linked
// object from one or more unlinked objects. The linked object is suitable for
// the overlay package.
//
// Build() runs the stages in order and then generates the overlay. The
// artifacts of each stage are recorded in a Context.
//
// The external tools are run through the Runner interface. ExecRunner runs them
// as child processes. Tests provide their own implementation.
package pipeline
