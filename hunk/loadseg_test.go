// This file is part of Gohunk.
//
// Gohunk is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gohunk is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gohunk.  If not, see <https://www.gnu.org/licenses/>.

package hunk_test

import (
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/faults"
	"github.com/jetsetilly/gohunk/hunk"
	"github.com/jetsetilly/gohunk/test"
)

func code(sz uint32) *hunk.SegmentBlock {
	return &hunk.SegmentBlock{Kind: hunk.HUNK_CODE, SizeLongs: sz, Data: make([]byte, sz*4)}
}

func TestAssemble(t *testing.T) {
	hdr := hunk.NewHeaderBlock([]uint32{2, 1, 0x100})
	reloc := &hunk.RelocLongBlock{Kind: hunk.HUNK_ABSRELOC32, Groups: []hunk.RelocGroup{{Hunk: 1, Offsets: []uint32{4}}}}
	sym := &hunk.SymbolBlock{Symbols: []hunk.SymbolEntry{{Name: "_start", Value: 0}}}
	dbg := &hunk.DebugBlock{Data: []byte("0000LINE")}
	bss := &hunk.SegmentBlock{Kind: hunk.HUNK_BSS, SizeLongs: 0x10}

	blocks := []hunk.Block{
		hdr,
		code(2), reloc, sym, dbg, &hunk.EndBlock{},
		&hunk.SegmentBlock{Kind: hunk.HUNK_DATA, SizeLongs: 1, Data: []byte{0, 0, 0, 1}}, &hunk.EndBlock{},
		bss, &hunk.EndBlock{},
	}

	lsf, err := hunk.ParseLoadSegFile(blocks)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(lsf.Segments), 3)

	s := lsf.Segments[0]
	test.ExpectEquality(t, s.SegBlock.Kind, hunk.HUNK_CODE)
	test.ExpectEquality(t, s.SymbolBlock, sym)
	test.ExpectEquality(t, len(s.RelocBlocks), 1)
	test.ExpectEquality(t, len(s.DebugBlocks), 1)
	test.ExpectEquality(t, len(s.Blocks), 4)

	// the size of a segment is taken from the header
	test.ExpectEquality(t, lsf.Segments[2].SizeLongs, uint32(0x100))
	test.ExpectEquality(t, lsf.Segments[2].SizeBytes(), uint32(0x400))
	test.ExpectEquality(t, lsf.Segments[2].SegBlock.SizeLongs, uint32(0x10))
}

func TestAssembleMissingEnd(t *testing.T) {
	hdr := hunk.NewHeaderBlock([]uint32{1, 1})
	reloc := &hunk.RelocWordBlock{Kind: hunk.HUNK_RELOC32SHORT, Groups: []hunk.RelocGroup{{Hunk: 0, Offsets: []uint32{0}}}}

	// no HUNK_END between the two segments
	segs, err := hunk.Assemble(hdr, []hunk.Block{code(1), code(1), reloc, &hunk.EndBlock{}})
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(segs), 2)
	test.ExpectEquality(t, len(segs[0].RelocBlocks), 0)
	test.ExpectEquality(t, len(segs[1].RelocBlocks), 1)

	// an extra block before the first segment block can't be split
	sym := &hunk.SymbolBlock{Symbols: []hunk.SymbolEntry{{Name: "a"}}}
	_, err = hunk.Assemble(hdr, []hunk.Block{sym, code(1), code(1)})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))
}

func TestAssembleErrors(t *testing.T) {
	hdr := hunk.NewHeaderBlock([]uint32{1})

	// no blocks
	_, err := hunk.ParseLoadSegFile(nil)
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))

	// no header
	_, err = hunk.ParseLoadSegFile([]hunk.Block{code(1)})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))

	// segment count does not match header
	_, err = hunk.Assemble(hdr, []hunk.Block{code(1), &hunk.EndBlock{}, code(1), &hunk.EndBlock{}})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))

	// duplicate symbol block
	sym := &hunk.SymbolBlock{Symbols: []hunk.SymbolEntry{{Name: "a"}}}
	_, err = hunk.Assemble(hdr, []hunk.Block{code(1), sym, sym})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))

	// block not allowed in an executable
	_, err = hunk.Assemble(hdr, []hunk.Block{code(1), &hunk.ExtBlock{}})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))

	// HUNK_NAME is allowed in a run but not in a segment
	_, err = hunk.Assemble(hdr, []hunk.Block{code(1), &hunk.NameBlock{Name: "x"}})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))

	// run without a segment block
	_, err = hunk.Assemble(hdr, []hunk.Block{sym, &hunk.EndBlock{}})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))
}

func TestLoadSegFileRoundTrip(t *testing.T) {
	c := hunk.NewCodeSegment([]byte{0x4e, 0xb9, 0x00, 0x00, 0x00, 0x00, 0x4e, 0x75})
	c.SetRelocs([]hunk.RelocGroup{{Hunk: 1, Offsets: []uint32{2}}}, false)
	c.SetSymbols([]hunk.SymbolEntry{{Name: "_main", Value: 0}})
	c.AddDebug([]byte("\x00\x00\x00\x00HEADDBGV01\x00\x00"))

	d := hunk.NewDataSegment([]byte("hello"))
	d.SetRelocs([]hunk.RelocGroup{{Hunk: 0, Offsets: []uint32{0x10000}}}, false)

	b := hunk.NewBSSSegment(10)

	lsf := &hunk.LoadSegFile{Segments: []*hunk.LoadSegment{c, d, b}}

	blocks, err := lsf.Blocks()
	test.DemandSuccess(t, err)
	test.ExpectDeepEquality(t, hunk.BlockNames(blocks), []string{
		"HUNK_HEADER",
		"HUNK_CODE", "HUNK_RELOC32SHORT", "HUNK_DEBUG", "HUNK_SYMBOL", "HUNK_END",
		"HUNK_DATA", "HUNK_ABSRELOC32", "HUNK_END",
		"HUNK_BSS", "HUNK_END",
	})
	test.ExpectDeepEquality(t, lsf.Header.HunkTable, []uint32{2, 2, 3})

	data, err := hunk.WriteBytes(blocks, true)
	test.DemandSuccess(t, err)

	read, err := hunk.ReadBytes(data, true)
	test.DemandSuccess(t, err)

	parsed, err := hunk.ParseLoadSegFile(read)
	test.DemandSuccess(t, err)

	test.ExpectDeepEquality(t, parsed.Segments, lsf.Segments,
		cmpopts.IgnoreFields(hunk.LoadSegment{}, "Blocks"),
		cmpopts.IgnoreFields(hunk.SegmentBlock{}, "DataOffset"),
	)
}

func TestSetRelocs(t *testing.T) {
	s := hunk.NewCodeSegment(make([]byte, 8))

	s.SetRelocs([]hunk.RelocGroup{{Hunk: 0, Offsets: []uint32{4}}}, false)
	test.ExpectEquality(t, s.RelocBlocks[0].ID(), hunk.HUNK_RELOC32SHORT)

	s.SetRelocs([]hunk.RelocGroup{{Hunk: 0, Offsets: []uint32{4}}}, true)
	test.ExpectEquality(t, s.RelocBlocks[0].ID(), hunk.HUNK_ABSRELOC32)

	s.SetRelocs(nil, false)
	test.ExpectEquality(t, len(s.RelocBlocks), 0)
}

func TestNewSegments(t *testing.T) {
	s := hunk.NewDataSegment([]byte{1, 2, 3, 4, 5})
	test.ExpectEquality(t, s.SizeLongs, uint32(2))
	test.ExpectBytes(t, s.SegBlock.Data, []byte{1, 2, 3, 4, 5, 0, 0, 0})

	s = hunk.NewBSSSegment(9)
	test.ExpectEquality(t, s.SizeLongs, uint32(3))
	test.ExpectEquality(t, s.SizeBytes(), uint32(12))
}
