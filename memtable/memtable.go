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

package memtable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/logger"
	"github.com/z64tools/z64ovl/target"
)

// FormatError is the pattern for a line in the memory table that cannot be
// parsed. The first value is the line number.
const FormatError = "memtable: line %d: %v"

// LoadError is the pattern for a memory table file that cannot be opened.
const LoadError = "memtable: %v"

// NoTable is the pattern for a target with no entries in the memory table.
const NoTable = "memtable: no entries for target %s"

// the symbol and category fields precede the offset fields.
const numFields = 2

// Entry is a single symbol in the memory table for a single target.
type Entry struct {
	Symbol   string
	Category string
	Offset   uint32
}

// Table is the list of entries for a single target.
type Table []Entry

// Sort the table by category and then by offset.
func (t Table) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		if t[i].Category != t[j].Category {
			return t[i].Category < t[j].Category
		}
		return t[i].Offset < t[j].Offset
	})
}

// Tables is the collection of tables indexed by target. Only targets with at
// least one entry are present.
type Tables map[target.Target]Table

// Targets returns the targets in the collection in enumeration order.
func (tables Tables) Targets() []target.Target {
	var l []target.Target
	for _, t := range target.List() {
		if _, ok := tables[t]; ok {
			l = append(l, t)
		}
	}
	return l
}

// Table returns the sorted table for the target. A target that shares its
// code segment with another target, such as the Japanese versions, returns
// the table of the canonical target.
func (tables Tables) Table(t target.Target) (Table, error) {
	tab, ok := tables[t.Canonical()]
	if !ok {
		return nil, curated.Errorf(NoTable, t)
	}
	tab.Sort()
	return tab, nil
}

// Load the memory table from the named file.
func Load(path string) (Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, curated.Errorf(LoadError, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse the memory table in r. The tables in the result are sorted.
func Parse(r io.Reader) (Tables, error) {
	tables := make(Tables)

	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header := true

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, curated.Errorf(FormatError, perr.Line, perr.Err)
			}
			return nil, curated.Errorf(FormatError, 0, err)
		}

		line, _ := cr.FieldPos(0)

		if header {
			header = false
			continue
		}

		// lines of whitespace are treated the same as empty lines
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		if len(rec) != numFields+len(target.MemoryTableColumns) {
			return nil, curated.Errorf(FormatError, line,
				fmt.Sprintf("expected %d values but found %d", numFields+len(target.MemoryTableColumns), len(rec)))
		}

		symbol := strings.TrimSpace(rec[0])
		category := strings.TrimSpace(rec[1])

		for i, t := range target.MemoryTableColumns {
			tok := strings.TrimSpace(rec[numFields+i])
			offset, err := strconv.ParseUint(tok, 16, 32)
			if err != nil {
				if tok != "" {
					logger.Logf(logger.Verbose, "MEMTABLE", "line %d: %s: ignoring offset for %s (%s)", line, symbol, t, tok)
				}
				continue
			}
			if offset == 0 {
				continue
			}
			tables[t] = append(tables[t], Entry{
				Symbol:   symbol,
				Category: category,
				Offset:   uint32(offset),
			})
		}
	}

	for _, t := range tables {
		t.Sort()
	}

	return tables, nil
}
