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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// The toolchain has a mode for each of its stages. The top level parse
// selects the mode and the function for that mode then adds its own flags and
// parses again:
//
//	md := &modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("OVERLAY", "BUILD", "VIEW")
//
//	p, err := md.Parse()
//	if p != modalflag.ParseContinue {
//		return err
//	}
//
//	switch md.Mode() {
//	case "OVERLAY":
//		md.NewMode()
//		output := md.AddString("o", "", "path to write the overlay to")
//		...
//	}
//
// The first sub-mode in the list is the default and is selected when the first
// non-flag argument does not name a sub-mode. Sub-mode comparisons are case
// insensitive.
//
// Non-flag arguments remaining after a Parse() are available with
// RemainingArgs() and GetArg().
//
// Help is handled automatically. If the -help flag is given the flags for the
// current mode and the list of sub-modes are printed to the Output writer and
// Parse() returns ParseHelp.
package modalflag
