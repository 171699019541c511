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

package memtable_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/memtable"
	"github.com/z64tools/z64ovl/target"
	"github.com/z64tools/z64ovl/test"
)

const table = `Symbol,Category,1.0U,1.1U,1.2U,1.0E,1.1E,MQU,DEBUG
# functions
Math_SinS,math,63A2C,63BEC,6420C,0,0,0,100B00
Actor_Kill,actor,20EA0,20F60,21240,0,0,0,B1480

Math_CosS,math,639FC,63BBC,641DC,0,0,0,100AD0
 
gGameInfo,variables,0,0,0,0,0,0,15D4A0
Rand_Next,math,zz,,0,0,0,0,CDCCC
`

func TestParse(t *testing.T) {
	tables, err := memtable.Parse(strings.NewReader(table))
	test.DemandSuccess(t, err)

	// only columns with at least one offset have a table
	tgs := tables.Targets()
	test.DemandEquality(t, len(tgs), 4)
	test.ExpectEquality(t, tgs[0], target.NTSCv10)
	test.ExpectEquality(t, tgs[1], target.NTSCv11)
	test.ExpectEquality(t, tgs[2], target.NTSCv12)
	test.ExpectEquality(t, tgs[3], target.Debug)

	tab, err := tables.Table(target.NTSCv10)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(tab), 3)

	// sorted by category and then offset
	test.ExpectEquality(t, tab[0], memtable.Entry{Symbol: "Actor_Kill", Category: "actor", Offset: 0x20ea0})
	test.ExpectEquality(t, tab[1], memtable.Entry{Symbol: "Math_CosS", Category: "math", Offset: 0x639fc})
	test.ExpectEquality(t, tab[2], memtable.Entry{Symbol: "Math_SinS", Category: "math", Offset: 0x63a2c})

	tab, err = tables.Table(target.Debug)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(tab), 5)
	test.ExpectEquality(t, tab[1].Symbol, "Rand_Next")
	test.ExpectEquality(t, tab[4].Symbol, "gGameInfo")

	_, err = tables.Table(target.PALv10)
	test.ExpectSuccess(t, curated.Is(err, memtable.NoTable))
	// japanese versions share the table of the north american version
	tab, err = tables.Table(target.NTSCv10J)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(tab), 3)
}

func TestParseFormatError(t *testing.T) {
	_, err := memtable.Parse(strings.NewReader("header\nSym,cat,1,2,3\n"))
	test.ExpectSuccess(t, curated.Is(err, memtable.FormatError))
	test.ExpectSuccess(t, strings.Contains(err.Error(), "line 2"))

	// an empty file is not an error
	tables, err := memtable.Parse(strings.NewReader(""))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(tables), 0)

	// the header is never checked
	tables, err = memtable.Parse(strings.NewReader("anything at all\n"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(tables), 0)
}

func TestLinkerScript(t *testing.T) {
	tables, err := memtable.Parse(strings.NewReader(table))
	test.DemandSuccess(t, err)
	tab, err := tables.Table(target.NTSCv11)
	test.DemandSuccess(t, err)

	var w test.Writer
	test.DemandSuccess(t, memtable.LinkerScript(&w, tab))

	expected := `MEMORY {
	code    : ORIGIN = 0x80000000, LENGTH = 0x00300000
	overlay : ORIGIN = 0x80800000, LENGTH = 0x00100000
}

SECTIONS {
	.text : {
		*(".text")
	} > overlay
	.data : {
		*(".data")
	} > overlay
	.rodata : {
		*(".rodata")
	} > overlay
	.bss : {
		*(".bss")
	} > overlay
	z64 : {
		/* actor */
		Actor_Kill = . + 20F60;

		/* math */
		Math_CosS = . + 63BBC;
		Math_SinS = . + 63BEC;
	} > code
}
`
	if !w.Compare(expected) {
		t.Errorf("unexpected linker script:\n%s", w.String())
	}

	w.Clear()
	test.DemandSuccess(t, memtable.LinkerScript(&w, nil))
	test.ExpectSuccess(t, strings.HasSuffix(w.String(), "\tz64 : {\n\t} > code\n}\n"))
}

func TestProject64Symbols(t *testing.T) {
	tables, err := memtable.Parse(strings.NewReader(table))
	test.DemandSuccess(t, err)
	tab, err := tables.Table(target.Debug)
	test.DemandSuccess(t, err)

	var w test.Writer
	test.DemandSuccess(t, memtable.Project64Symbols(&w, tab))

	expected := "800B1480,code,Actor_Kill,actor\n" +
		"800CDCCC,code,Rand_Next,math\n" +
		"80100AD0,code,Math_CosS,math\n" +
		"80100B00,code,Math_SinS,math\n" +
		"8015D4A0,code,gGameInfo,variables\n"
	if !w.Compare(expected) {
		t.Errorf("unexpected symbols:\n%s", w.String())
	}
}

func TestWriteLinkerScripts(t *testing.T) {
	dir := t.TempDir()

	csv := filepath.Join(dir, "Memory Table.csv")
	test.DemandSuccess(t, os.WriteFile(csv, []byte(table), 0644))

	tables, err := memtable.Load(csv)
	test.DemandSuccess(t, err)

	written, err := memtable.WriteLinkerScripts(tables, dir)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(written), 4)
	test.ExpectEquality(t, written[3], filepath.Join(dir, "Debug.ld"))

	data, err := os.ReadFile(filepath.Join(dir, "NTSC 1.2.ld"))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(data), "\t\tActor_Kill = . + 21240;\n"))

	sym := filepath.Join(dir, "debug.sym")
	tab, err := tables.Table(target.Debug)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, memtable.WriteProject64Symbols(tab, sym))
	data, err = os.ReadFile(sym)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, strings.Count(string(data), "\n"), 5)

	_, err = memtable.Load(filepath.Join(dir, "missing.csv"))
	test.ExpectSuccess(t, curated.Is(err, memtable.LoadError))

	err = memtable.WriteProject64Symbols(tab, filepath.Join(dir, "missing", "debug.sym"))
	test.ExpectSuccess(t, curated.Is(err, memtable.WriteError))
}
