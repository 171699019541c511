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

package symbols

import (
	"debug/elf"
	"strings"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/elfobj"
)

// UnknownFilter is the pattern for an unrecognised filter name.
const UnknownFilter = "symbols: unknown filter: %s"

// sectionTypeRegInfo is SHT_MIPS_REGINFO.
const sectionTypeRegInfo = elf.SectionType(0x70000006)

// RegInfoSection is the name of the register usage information section.
const RegInfoSection = ".reginfo"

// Find returns the first symbol with a name that matches exactly. Returns nil
// if there is no such symbol. The null symbol is never matched.
func Find(syms []*elfobj.Symbol, name string) *elfobj.Symbol {
	for _, s := range syms {
		if s.Index == 0 {
			continue
		}
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Filter is the policy used to decide whether a relocation is to be ignored
// because of the symbol it refers to.
type Filter int

// List of valid Filter values.
const (
	FilterMetadata Filter = iota
	FilterNonLocal
)

func (f Filter) String() string {
	switch f {
	case FilterMetadata:
		return "metadata"
	case FilterNonLocal:
		return "local"
	}
	return "unknown"
}

// ParseFilter converts the name of a filter to a Filter value. The empty
// string is the same as "metadata".
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "", "metadata":
		return FilterMetadata, nil
	case "local":
		return FilterNonLocal, nil
	}
	return FilterMetadata, curated.Errorf(UnknownFilter, s)
}

// Skip returns true if relocations referring to the symbol should be ignored.
func (f Filter) Skip(sym *elfobj.Symbol) bool {
	switch f {
	case FilterNonLocal:
		return sym.Binding != elf.STB_LOCAL
	default:
		return IsMetadata(sym)
	}
}

// IsMetadata returns true if the symbol is owned by a section that is never
// loaded into memory.
func IsMetadata(sym *elfobj.Symbol) bool {
	if sym.Section == nil {
		return false
	}
	return sym.Section.Name == RegInfoSection || sym.Section.Type == sectionTypeRegInfo
}
