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

package overlay_test

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z64tools/z64ovl/curated"
	"github.com/z64tools/z64ovl/elfobj"
	"github.com/z64tools/z64ovl/elfobj/elftest"
	"github.com/z64tools/z64ovl/overlay"
	"github.com/z64tools/z64ovl/reloc"
	"github.com/z64tools/z64ovl/symbols"
	"github.com/z64tools/z64ovl/test"
)

const loadAddress = 0x80800000

// actor is a linked object typical of a small actor. the executable segment
// covers .text, .data and .rodata. the INIT symbol is at the start of .rodata
type actor struct {
	b       *elftest.Builder
	text    uint32
	data    uint32
	reginfo uint32
	global  uint32
}

func newActor() *actor {
	a := &actor{b: elftest.NewBuilder()}

	code := make([]byte, 0x40)
	for i := range code {
		code[i] = byte(i)
	}

	a.b.AddText(loadAddress, code[:0x20])
	a.b.AddData(".data", loadAddress+0x20, code[0x20:0x30])
	a.b.AddSection(".rodata", elf.SHT_PROGBITS, elf.SHF_ALLOC, loadAddress+0x30, code[0x30:])
	a.b.AddNoBits(".bss", loadAddress+0x40, 0x20)
	a.b.AddRegInfo()
	a.b.AddSegment(elf.PF_R|elf.PF_X, loadAddress, code)

	a.text = a.b.AddSymbol("", loadAddress, elf.STB_LOCAL, elf.STT_SECTION, ".text")
	a.data = a.b.AddSymbol("", loadAddress+0x20, elf.STB_LOCAL, elf.STT_SECTION, ".data")
	a.reginfo = a.b.AddSymbol("_gp", 0, elf.STB_LOCAL, elf.STT_NOTYPE, ".reginfo")
	a.global = a.b.AddSymbol("INIT", loadAddress+0x30, elf.STB_GLOBAL, elf.STT_OBJECT, ".rodata")

	return a
}

// relocations adds the standard set of relocation sections.
func (a *actor) relocations() {
	a.b.AddRelocations(".rel.text", []elftest.Rel{
		{Offset: loadAddress + 0x04, Symbol: a.text, Type: uint8(reloc.R_MIPS_HI16)},
		{Offset: loadAddress + 0x08, Symbol: a.text, Type: uint8(reloc.R_MIPS_LO16)},
		{Offset: loadAddress + 0x0c, Symbol: a.reginfo, Type: uint8(reloc.R_MIPS_GPREL16)},
		{Offset: loadAddress + 0x10, Symbol: a.data, Type: uint8(reloc.R_MIPS_26)},
	})
	a.b.AddRelocations(".rel.data", []elftest.Rel{
		{Offset: loadAddress + 0x20, Symbol: a.global, Type: uint8(reloc.R_MIPS_32)},
	})
	a.b.AddRelocations(".rel.rodata", []elftest.Rel{
		{Offset: loadAddress + 0x34, Symbol: a.text, Type: uint8(reloc.R_MIPS_32)},
	})
	a.b.AddRelocations(".rel.debug_info", []elftest.Rel{
		{Offset: 0x00, Symbol: a.text, Type: uint8(reloc.R_MIPS_32)},
	})
}

func (a *actor) object(t *testing.T) *elfobj.Object {
	t.Helper()
	obj, err := elfobj.NewObject(bytes.NewReader(a.b.Bytes()), "actor.elf")
	require.NoError(t, err)
	return obj
}

func (a *actor) file(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "actor.elf")
	require.NoError(t, a.b.WriteFile(path))
	return path
}

func TestRelocationCollection(t *testing.T) {
	a := newActor()
	a.relocations()

	ovl, err := overlay.Generate(a.object(t), overlay.Options{})
	require.NoError(t, err)

	// emission order follows the order of the relocation sections and then
	// the order of records in each section. the .reginfo relocation and the
	// .rel.debug_info section are dropped
	expected := []overlay.Relocation{
		{Section: overlay.Text, Type: reloc.R_MIPS_HI16, Offset: 0x04},
		{Section: overlay.Text, Type: reloc.R_MIPS_LO16, Offset: 0x08},
		{Section: overlay.Text, Type: reloc.R_MIPS_26, Offset: 0x10},
		{Section: overlay.Data, Type: reloc.R_MIPS_32, Offset: 0x20},
		{Section: overlay.Rodata, Type: reloc.R_MIPS_32, Offset: 0x34},
	}
	assert.Equal(t, expected, ovl.Relocations)

	assert.Equal(t, overlay.Header{TextSize: 0x20, DataSize: 0x10, RodataSize: 0x10, BssSize: 0x20}, ovl.Header)
	assert.Equal(t, uint32(loadAddress), ovl.LoadAddress)
	require.NotNil(t, ovl.Init)
	assert.Equal(t, uint32(loadAddress+0x30), ovl.Init.Value)
}

func TestLocalFilter(t *testing.T) {
	a := newActor()
	a.relocations()

	ovl, err := overlay.Generate(a.object(t), overlay.Options{Filter: symbols.FilterNonLocal})
	require.NoError(t, err)

	// the relocation that refers to the INIT symbol is dropped because INIT is
	// global. the .reginfo symbol is local so its relocation survives
	var offsets []uint32
	for _, r := range ovl.Relocations {
		offsets = append(offsets, r.Offset)
	}
	assert.Equal(t, []uint32{0x04, 0x08, 0x0c, 0x10, 0x34}, offsets)
}

func TestSerialisation(t *testing.T) {
	a := newActor()
	a.relocations()

	ovl, err := overlay.Generate(a.object(t), overlay.Options{})
	require.NoError(t, err)

	data := ovl.Bytes()
	be := binary.BigEndian

	// code is already aligned so the header immediately follows it
	test.ExpectEquality(t, len(data), 0x70)
	for i := 0; i < 0x40; i++ {
		test.ExpectEquality(t, data[i], byte(i))
	}

	words := []uint32{0x20, 0x10, 0x10, 0x20, 5, 0x45000004, 0x46000008, 0x44000010, 0x82000020, 0xc2000034}
	for i, w := range words {
		test.ExpectEquality(t, be.Uint32(data[0x40+i*4:]), w, i)
	}

	// padding before the reverse offset
	for _, v := range data[0x68:0x6c] {
		test.ExpectEquality(t, v, byte(0))
	}

	test.ExpectEquality(t, be.Uint32(data[0x6c:]), uint32(0x30))
}

func TestHeaderMissingSections(t *testing.T) {
	b := elftest.NewBuilder()
	code := make([]byte, 0x50)
	b.AddText(loadAddress, code[:0x40])
	b.AddData(".data", loadAddress+0x40, code[0x40:])
	b.AddSegment(elf.PF_R|elf.PF_X, loadAddress, code)

	obj, err := elfobj.NewObject(bytes.NewReader(b.Bytes()), "small.elf")
	require.NoError(t, err)

	ovl, err := overlay.Generate(obj, overlay.Options{})
	require.NoError(t, err)

	data := ovl.Bytes()
	start := len(data) - int(binary.BigEndian.Uint32(data[len(data)-4:]))
	test.ExpectEquality(t, start, 0x50)

	hdr := make([]uint32, 5)
	for i := range hdr {
		hdr[i] = binary.BigEndian.Uint32(data[start+i*4:])
	}
	assert.Equal(t, []uint32{0x40, 0x10, 0, 0, 0}, hdr)
}

func TestAlignment(t *testing.T) {
	// for every combination of code length and relocation count the header is
	// 16 byte aligned and the reverse offset locates it
	for codeLen := 0x20; codeLen <= 0x30; codeLen += 4 {
		for count := 0; count < 6; count++ {
			b := elftest.NewBuilder()
			code := make([]byte, codeLen)
			b.AddText(loadAddress, code[:0x10])
			b.AddData(".data", loadAddress+0x10, code[0x10:])
			b.AddSegment(elf.PF_R|elf.PF_X, loadAddress, code)
			sym := b.AddSymbol("", loadAddress, elf.STB_LOCAL, elf.STT_SECTION, ".text")

			rels := make([]elftest.Rel, count)
			for i := range rels {
				rels[i] = elftest.Rel{Offset: loadAddress + uint32(i*4), Symbol: sym, Type: uint8(reloc.R_MIPS_32)}
			}
			b.AddRelocations(".rel.text", rels)

			obj, err := elfobj.NewObject(bytes.NewReader(b.Bytes()), "align.elf")
			require.NoError(t, err)
			ovl, err := overlay.Generate(obj, overlay.Options{})
			require.NoError(t, err)

			data := ovl.Bytes()
			reverse := int(binary.BigEndian.Uint32(data[len(data)-4:]))
			start := len(data) - reverse

			test.ExpectEquality(t, start%16, 0, codeLen, count)
			test.ExpectEquality(t, start, (codeLen+15)&^15, codeLen, count)
			test.ExpectEquality(t, (len(data)-4-start)%16, 12, codeLen, count)
			test.ExpectEquality(t, int(binary.BigEndian.Uint32(data[start+16:])), count, codeLen, count)

			for _, v := range data[codeLen:start] {
				test.ExpectEquality(t, v, byte(0), codeLen, count)
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	a := newActor()
	a.relocations()
	input := a.file(t)

	dir := t.TempDir()
	var out bytes.Buffer

	first := filepath.Join(dir, "first.zovl")
	require.NoError(t, overlay.Convert(input, overlay.Options{Output: first}, &out))
	second := filepath.Join(dir, "second.zovl")
	require.NoError(t, overlay.Convert(input, overlay.Options{Output: second}, &out))

	d1, err := os.ReadFile(first)
	require.NoError(t, err)
	d2, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestMissingText(t *testing.T) {
	b := elftest.NewBuilder()
	b.AddData(".data", loadAddress, make([]byte, 0x10))
	b.AddSegment(elf.PF_R|elf.PF_X, loadAddress, make([]byte, 0x10))

	input := filepath.Join(t.TempDir(), "notext.elf")
	require.NoError(t, b.WriteFile(input))

	output := filepath.Join(t.TempDir(), "notext.zovl")
	err := overlay.Convert(input, overlay.Options{Output: output}, &bytes.Buffer{})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, overlay.MissingSection))
	test.ExpectSuccess(t, strings.Contains(err.Error(), ".text"))

	_, err = os.Stat(output)
	test.ExpectSuccess(t, os.IsNotExist(err))
}

func TestMissingDataAndRodata(t *testing.T) {
	b := elftest.NewBuilder()
	b.AddText(loadAddress, make([]byte, 0x10))
	b.AddNoBits(".bss", loadAddress+0x10, 0x10)
	b.AddSegment(elf.PF_R|elf.PF_X, loadAddress, make([]byte, 0x10))

	obj, err := elfobj.NewObject(bytes.NewReader(b.Bytes()), "nodata.elf")
	require.NoError(t, err)

	_, err = overlay.Generate(obj, overlay.Options{})
	test.ExpectSuccess(t, curated.Is(err, overlay.MissingSection))

	// .rodata alone is sufficient
	b.AddSection(".rodata", elf.SHT_PROGBITS, elf.SHF_ALLOC, loadAddress+0x20, make([]byte, 0x10))
	obj, err = elfobj.NewObject(bytes.NewReader(b.Bytes()), "rodata.elf")
	require.NoError(t, err)

	_, err = overlay.Generate(obj, overlay.Options{})
	test.ExpectSuccess(t, err)
}

func TestMissingSegment(t *testing.T) {
	b := elftest.NewBuilder()
	b.AddText(loadAddress, make([]byte, 0x10))
	b.AddData(".data", loadAddress+0x10, make([]byte, 0x10))
	b.AddSegment(elf.PF_R|elf.PF_W, loadAddress, make([]byte, 0x20))

	obj, err := elfobj.NewObject(bytes.NewReader(b.Bytes()), "noexec.elf")
	require.NoError(t, err)

	_, err = overlay.Generate(obj, overlay.Options{})
	test.ExpectSuccess(t, curated.Is(err, overlay.MissingSegment))

	ovl, err := overlay.Generate(obj, overlay.Options{ForceNoProgram: true})
	require.NoError(t, err)
	test.ExpectEquality(t, len(ovl.Code), 0)

	// header starts at zero so the reverse offset covers the entire file
	data := ovl.Bytes()
	test.ExpectEquality(t, int(binary.BigEndian.Uint32(data[len(data)-4:])), len(data))
}

func TestMissingSegmentWithRelocations(t *testing.T) {
	b := elftest.NewBuilder()
	b.AddText(loadAddress, make([]byte, 0x10))
	b.AddData(".data", loadAddress+0x10, make([]byte, 0x10))
	b.AddSegment(elf.PF_R|elf.PF_W, loadAddress, make([]byte, 0x20))
	text := b.AddSymbol("", loadAddress, elf.STB_LOCAL, elf.STT_SECTION, ".text")
	b.AddRelocations(".rel.text", []elftest.Rel{
		{Offset: loadAddress + 0x04, Symbol: text, Type: uint8(reloc.R_MIPS_HI16)},
	})

	obj, err := elfobj.NewObject(bytes.NewReader(b.Bytes()), "noexec.elf")
	require.NoError(t, err)

	// absolute addresses cannot be rebased without a segment
	ovl, err := overlay.Generate(obj, overlay.Options{ForceNoProgram: true})
	require.NoError(t, err)
	test.ExpectEquality(t, len(ovl.Code), 0)
	test.ExpectEquality(t, len(ovl.Relocations), 0)
	test.ExpectEquality(t, ovl.Header, overlay.Header{TextSize: 0x10, DataSize: 0x10})
}

func TestMissingSymbolTable(t *testing.T) {
	b := elftest.NewBuilder()
	b.NoSymbolTable = true
	b.AddText(loadAddress, make([]byte, 0x10))
	b.AddData(".data", loadAddress+0x10, make([]byte, 0x10))
	b.AddSegment(elf.PF_R|elf.PF_X, loadAddress, make([]byte, 0x20))

	obj, err := elfobj.NewObject(bytes.NewReader(b.Bytes()), "nosyms.elf")
	require.NoError(t, err)

	_, err = overlay.Generate(obj, overlay.Options{})
	test.ExpectSuccess(t, err)

	_, err = overlay.Generate(obj, overlay.Options{ShowInitAddress: true})
	test.ExpectSuccess(t, curated.Is(err, overlay.MissingSymbolTable))

	_, err = overlay.Generate(obj, overlay.Options{CompatibilityPatch: true})
	test.ExpectSuccess(t, curated.Is(err, overlay.MissingSymbolTable))
}

func TestMissingInitSymbol(t *testing.T) {
	a := newActor()
	obj := a.object(t)

	_, err := overlay.Generate(obj, overlay.Options{InitSymbol: "Actor_InitVars"})
	test.ExpectSuccess(t, err)

	_, err = overlay.Generate(obj, overlay.Options{InitSymbol: "Actor_InitVars", ShowInitAddress: true})
	test.ExpectSuccess(t, curated.Is(err, overlay.MissingInitSymbol))
	test.ExpectSuccess(t, strings.Contains(err.Error(), "Actor_InitVars"))
}

func TestOffsetRange(t *testing.T) {
	a := newActor()
	a.b.AddRelocations(".rel.text", []elftest.Rel{
		{Offset: loadAddress + 0x01000000, Symbol: a.text, Type: uint8(reloc.R_MIPS_32)},
	})

	_, err := overlay.Generate(a.object(t), overlay.Options{})
	test.ExpectSuccess(t, curated.Is(err, overlay.OffsetRange))

	// below the load address
	a = newActor()
	a.b.AddRelocations(".rel.text", []elftest.Rel{
		{Offset: loadAddress - 4, Symbol: a.text, Type: uint8(reloc.R_MIPS_32)},
	})

	_, err = overlay.Generate(a.object(t), overlay.Options{})
	test.ExpectSuccess(t, curated.Is(err, overlay.OffsetRange))

	// the largest offset that can be encoded
	a = newActor()
	a.b.AddRelocations(".rel.text", []elftest.Rel{
		{Offset: loadAddress + overlay.MaxOffset, Symbol: a.text, Type: uint8(reloc.R_MIPS_32)},
	})

	ovl, err := overlay.Generate(a.object(t), overlay.Options{})
	require.NoError(t, err)
	test.ExpectEquality(t, ovl.Relocations[0].Pack(), uint32(0x42ffffff))
}

func TestRelocationEncodingLimits(t *testing.T) {
	a := newActor()
	a.b.AddRelocations(".rel.text", []elftest.Rel{
		{Offset: loadAddress, Symbol: a.text, Type: 0x40},
	})

	_, err := overlay.Generate(a.object(t), overlay.Options{})
	test.ExpectSuccess(t, curated.Is(err, overlay.UnsupportedType))

	// .rel.bss records are dropped and the sections either side survive
	a = newActor()
	a.b.AddRelocations(".rel.text", []elftest.Rel{
		{Offset: loadAddress + 0x04, Symbol: a.text, Type: uint8(reloc.R_MIPS_HI16)},
	})
	a.b.AddRelocations(".rel.bss", []elftest.Rel{
		{Offset: loadAddress + 0x40, Symbol: a.text, Type: uint8(reloc.R_MIPS_32)},
		{Offset: loadAddress + 0x44, Symbol: a.text, Type: uint8(reloc.R_MIPS_32)},
	})
	a.b.AddRelocations(".rel.data", []elftest.Rel{
		{Offset: loadAddress + 0x20, Symbol: a.text, Type: uint8(reloc.R_MIPS_32)},
	})

	ovl, err := overlay.Generate(a.object(t), overlay.Options{})
	require.NoError(t, err)
	require.Len(t, ovl.Relocations, 2)
	test.ExpectEquality(t, ovl.Relocations[0], overlay.Relocation{Section: overlay.Text, Type: reloc.R_MIPS_HI16, Offset: 0x04})
	test.ExpectEquality(t, ovl.Relocations[1], overlay.Relocation{Section: overlay.Data, Type: reloc.R_MIPS_32, Offset: 0x20})
	for _, r := range ovl.Relocations {
		test.ExpectInequality(t, r.Section, overlay.Bss)
	}
}

func TestCompatibilityPatch(t *testing.T) {
	a := newActor()
	obj := a.object(t)

	ovl, err := overlay.Generate(obj, overlay.Options{})
	require.NoError(t, err)
	test.ExpectEquality(t, binary.BigEndian.Uint16(ovl.Code[0x30:]), uint16(0x3031))
	test.ExpectEquality(t, binary.BigEndian.Uint16(ovl.Code[0x38:]), uint16(0x3839))

	ovl, err = overlay.Generate(obj, overlay.Options{CompatibilityPatch: true})
	require.NoError(t, err)
	test.ExpectEquality(t, binary.BigEndian.Uint16(ovl.Code[0x30:]), uint16(overlay.PlaceholderActorID))
	test.ExpectEquality(t, binary.BigEndian.Uint16(ovl.Code[0x38:]), uint16(overlay.PlaceholderObjectID))

	// the padding after the object ID field is left alone
	test.ExpectEquality(t, binary.BigEndian.Uint16(ovl.Code[0x3a:]), uint16(0x3a3b))
	test.ExpectEquality(t, binary.BigEndian.Uint16(ovl.Code[0x32:]), uint16(0x3233))

	// bytes between and after the fields are untouched
	assert.Equal(t, []byte{0x32, 0x33, 0x34, 0x35, 0x36, 0x37}, ovl.Code[0x32:0x38])
	assert.Equal(t, []byte{0x3a, 0x3b}, ovl.Code[0x3a:0x3c])

	// the object itself is not modified
	test.ExpectEquality(t, obj.ExecutableSegment().Data[0x30], byte(0x30))
}

func TestCompatibilityPatchOutOfRange(t *testing.T) {
	a := newActor()
	a.b.AddSymbol("LATE", loadAddress+0x3c, elf.STB_GLOBAL, elf.STT_OBJECT, ".rodata")

	_, err := overlay.Generate(a.object(t), overlay.Options{InitSymbol: "LATE", CompatibilityPatch: true})
	test.ExpectSuccess(t, curated.Is(err, overlay.OffsetRange))
}

func TestReport(t *testing.T) {
	a := newActor()
	a.relocations()
	input := a.file(t)
	output := filepath.Join(t.TempDir(), "actor.zovl")

	var w test.Writer

	require.NoError(t, overlay.Convert(input, overlay.Options{Output: output}, &w))
	test.ExpectSuccess(t, w.Compare("Overlay written to "+output+".\n"))
	w.Clear()

	require.NoError(t, overlay.Convert(input, overlay.Options{Output: output, ShowInitAddress: true}, &w))
	test.ExpectSuccess(t, w.Compare("Overlay written to "+output+".\nINIT structure located at 80800030.\n"))
	w.Clear()

	require.NoError(t, overlay.Convert(input, overlay.Options{Output: output, ShowInitAddress: true, Porcelain: true}, &w))
	test.ExpectSuccess(t, w.Compare(output+"\n80800030\n"))
	w.Clear()

	require.NoError(t, overlay.Convert(input, overlay.Options{Output: output, Porcelain: true}, &w))
	test.ExpectSuccess(t, w.Compare(output+"\n"))
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()

	err := overlay.Convert(filepath.Join(dir, "missing.elf"), overlay.Options{Output: filepath.Join(dir, "out.zovl")}, &bytes.Buffer{})
	test.ExpectSuccess(t, curated.Is(err, elfobj.IOError))
	test.ExpectFailure(t, curated.Is(err, elfobj.ParseError))
	_, err = os.Stat(filepath.Join(dir, "out.zovl"))
	test.ExpectSuccess(t, os.IsNotExist(err))

	a := newActor()
	input := a.file(t)
	err = overlay.Convert(input, overlay.Options{Output: filepath.Join(dir, "nodir", "out.zovl")}, &bytes.Buffer{})
	test.ExpectSuccess(t, curated.Is(err, overlay.IOError))
}
