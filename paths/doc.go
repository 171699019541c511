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

// Package paths resolves the location of the resources used by the toolchain.
// The resource directory holds the Templates directory (linker scripts and the
// Memory Table CSV file) and the Headers directory (the C headers given to the
// compiler).
//
// The resource directory is, in order of preference:
//
//  1. the value of the Z64OVL_HOME environment variable
//  2. the directory containing the executable, if it has a Templates directory
//  3. the current working directory
package paths
