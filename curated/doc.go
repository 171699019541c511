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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface and are created with the
// Errorf() function, which takes a pattern and a list of values in the same
// way as fmt.Errorf().
//
// The pattern is remembered and is used to identify the error later on. The
// usual arrangement is for a package to declare the patterns it uses as
// exported string constants:
//
//	const MissingSection = "overlay: %s: missing %s section"
//
//	err := curated.Errorf(MissingSection, "actor.elf", ".text")
//
//	if curated.Is(err, MissingSection) {
//		...
//	}
//
// Has() is similar to Is() but looks for the pattern anywhere in the chain of
// curated errors. A chain is formed whenever a curated error is one of the
// values given to Errorf():
//
//	f := curated.Errorf("build: %v", err)
//
//	curated.Has(f, MissingSection) == true
//	curated.Is(f, MissingSection) == false
//
// The Error() function normalises the message by removing duplicate adjacent
// parts, where parts are separated by ": ". So an ELF error wrapped by a
// second ELF error reads "elf: invalid magic" rather than
// "elf: elf: invalid magic".
//
// Uncurated errors (from the os package for example) can be values of a
// curated error. The Unwrap() function makes them available to errors.As() and
// errors.Is() from the standard library.
package curated
