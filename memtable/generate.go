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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/logger"
)

// WriteError is the pattern for a failure to write a generated file.
const WriteError = "memtable: %s: %v"

// the overlay sections are placed in the overlay memory region. the symbols in
// the memory table are defined relative to the start of the code region
const linkerScript = `MEMORY {
	code    : ORIGIN = 0x80000000, LENGTH = 0x00300000
	overlay : ORIGIN = 0x80800000, LENGTH = 0x00100000
}

SECTIONS {
{{- range .Sections}}
	{{.}} : {
		*("{{.}}")
	} > overlay
{{- end}}
	z64 : {
{{- range $i, $g := .Groups}}
{{- if $i}}
{{end}}
		/* {{$g.Category}} */
{{- range $g.Entries}}
		{{.Symbol}} = . + {{printf "%X" .Offset}};
{{- end}}
{{- end}}
	} > code
}
`

var scriptTemplate = template.Must(template.New("linker script").Parse(linkerScript))

type group struct {
	Category string
	Entries  []Entry
}

// groups returns the entries of the table grouped by category. The order of
// the groups is the order in which each category first appears.
func (t Table) groups() []group {
	var groups []group
	idx := make(map[string]int)
	for _, e := range t {
		i, ok := idx[e.Category]
		if !ok {
			i = len(groups)
			idx[e.Category] = i
			groups = append(groups, group{Category: e.Category})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// LinkerScript writes the GNU ld linker script for the table to w. The table
// should be sorted.
func LinkerScript(w io.Writer, t Table) error {
	return scriptTemplate.Execute(w, struct {
		Sections []string
		Groups   []group
	}{
		Sections: []string{".text", ".data", ".rodata", ".bss"},
		Groups:   t.groups(),
	})
}

// Project64Symbols writes a symbols file suitable for the Project64 debugger.
// One line per entry in the order of the table.
func Project64Symbols(w io.Writer, t Table) error {
	for _, e := range t {
		_, err := fmt.Fprintf(w, "%X,code,%s,%s\n", 0x80000000+uint64(e.Offset), e.Symbol, e.Category)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteLinkerScripts writes the linker script for every target in the
// collection to the directory. Returns the paths of the files written.
func WriteLinkerScripts(tables Tables, dir string) ([]string, error) {
	var written []string

	for _, tg := range tables.Targets() {
		tab, err := tables.Table(tg)
		if err != nil {
			return written, err
		}

		path := filepath.Join(dir, tg.Script())
		err = writeFile(path, func(w io.Writer) error {
			return LinkerScript(w, tab)
		})
		if err != nil {
			return written, err
		}

		logger.Logf(logger.Allow, "MEMTABLE", "%s: %d symbols written to %s", tg, len(tab), path)
		written = append(written, path)
	}

	return written, nil
}

// WriteProject64Symbols writes the Project64 symbols file for the table to the
// named file.
func WriteProject64Symbols(t Table, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return Project64Symbols(w, t)
	})
}

func writeFile(path string, fn func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return curated.Errorf(WriteError, path, err)
	}

	err = fn(f)
	if err != nil {
		f.Close()
		return curated.Errorf(WriteError, path, err)
	}

	err = f.Close()
	if err != nil {
		return curated.Errorf(WriteError, path, err)
	}

	return nil
}
