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
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/faults"
	"github.com/jetsetilly/gohunk/hunk"
	"github.com/jetsetilly/gohunk/test"
)

// longs returns the big-endian encoding of the values.
func longs(v ...uint32) []byte {
	b := make([]byte, 0, len(v)*4)
	for _, l := range v {
		b = binary.BigEndian.AppendUint32(b, l)
	}
	return b
}

// words returns the big-endian encoding of the values.
func words(v ...uint16) []byte {
	b := make([]byte, 0, len(v)*2)
	for _, w := range v {
		b = binary.BigEndian.AppendUint16(b, w)
	}
	return b
}

func join(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

func TestNameTrim(t *testing.T) {
	blk, n, err := hunk.DecodeBlock(hunk.HUNK_NAME, join(longs(2), []byte("FOO\x00\x00\x00\x00\x00")))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, 12)
	test.ExpectEquality(t, blk.(*hunk.NameBlock).Name, "FOO")

	// a name of all null bytes
	blk, n, err = hunk.DecodeBlock(hunk.HUNK_NAME, longs(1, 0))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, 8)
	test.ExpectEquality(t, blk.(*hunk.NameBlock).Name, "")

	// a name with no null byte uses all of the bytes
	blk, _, err = hunk.DecodeBlock(hunk.HUNK_UNIT, join(longs(1), []byte("ABCD")))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, blk.(*hunk.UnitBlock).Name, "ABCD")

	// names are padded when encoded
	data, err := hunk.EncodeBlock(&hunk.NameBlock{Name: "FOOBAR"})
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, data, join(longs(2), []byte("FOOBAR\x00\x00")))
}

func TestSymbolTermination(t *testing.T) {
	// a count of zero ends the list
	blk, n, err := hunk.DecodeBlock(hunk.HUNK_SYMBOL, longs(0))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, 4)
	test.ExpectEquality(t, len(blk.(*hunk.SymbolBlock).Symbols), 0)

	payload := join(longs(1), []byte("_a\x00\x00"), longs(0x10), longs(2), []byte("_start\x00\x00"), longs(0x20), longs(0))
	blk, n, err = hunk.DecodeBlock(hunk.HUNK_SYMBOL, payload)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(payload))
	test.ExpectDeepEquality(t, blk, &hunk.SymbolBlock{Symbols: []hunk.SymbolEntry{
		{Name: "_a", Value: 0x10},
		{Name: "_start", Value: 0x20},
	}})

	data, err := hunk.EncodeBlock(blk)
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, data, payload)

	// a symbol without a name would be read as the end of the list
	_, err = hunk.EncodeBlock(&hunk.SymbolBlock{Symbols: []hunk.SymbolEntry{{Value: 1}}})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))
}

func TestHeaderMasking(t *testing.T) {
	payload := longs(0, 2, 0, 1, 0x80000010, 0x00000010)
	blk, n, err := hunk.DecodeBlock(hunk.HUNK_HEADER, payload)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(payload))

	hdr := blk.(*hunk.HeaderBlock)
	test.ExpectEquality(t, len(hdr.HunkTable), 2)
	test.ExpectEquality(t, hdr.HunkTable[0], uint32(0x10))
	test.ExpectEquality(t, hdr.HunkTable[1], uint32(0x10))
	test.ExpectEquality(t, hdr.MemFlags[0], uint32(0x80000000))
	test.ExpectEquality(t, hdr.MemFlags[1], uint32(0))

	// memory attribute bits are restored when encoded
	data, err := hunk.EncodeBlock(hdr)
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, data, payload)
}

func TestHeaderResidentLibs(t *testing.T) {
	payload := join(longs(3), []byte("dos.library\x00"), longs(0, 1, 0, 0, 4))
	blk, _, err := hunk.DecodeBlock(hunk.HUNK_HEADER, payload)
	test.DemandSuccess(t, err)
	test.ExpectDeepEquality(t, blk.(*hunk.HeaderBlock).ResidentLibs, []string{"dos.library"})
}

func TestHeaderTruncated(t *testing.T) {
	// header declares two segments but only has the size of one
	_, _, err := hunk.DecodeBlock(hunk.HUNK_HEADER, longs(0, 2, 0, 1, 0x10))
	test.ExpectSuccess(t, curated.Has(err, faults.MalformedStream))

	// last hunk before first hunk
	_, _, err = hunk.DecodeBlock(hunk.HUNK_HEADER, longs(0, 0, 2, 0))
	test.ExpectSuccess(t, curated.Has(err, faults.MalformedStream))
}

func TestSegment(t *testing.T) {
	payload := join(longs(2), []byte{0x4e, 0x75, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04})
	blk, n, err := hunk.DecodeBlock(hunk.HUNK_CODE, payload)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(payload))

	seg := blk.(*hunk.SegmentBlock)
	test.ExpectEquality(t, seg.Kind, hunk.HUNK_CODE)
	test.ExpectEquality(t, seg.SizeLongs, uint32(2))
	test.ExpectEquality(t, seg.DataOffset, 4)
	test.ExpectBytes(t, seg.Data, payload[4:])

	// BSS has no data
	blk, n, err = hunk.DecodeBlock(hunk.HUNK_BSS, longs(0x100))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, 4)
	test.ExpectEquality(t, blk.(*hunk.SegmentBlock).SizeLongs, uint32(0x100))
	test.ExpectEquality(t, len(blk.(*hunk.SegmentBlock).Data), 0)

	// data is shorter than the size of the segment
	_, _, err = hunk.DecodeBlock(hunk.HUNK_DATA, longs(4, 0))
	test.ExpectSuccess(t, curated.Has(err, faults.MalformedStream))
}

func TestRelocWordPadding(t *testing.T) {
	// count, hunk, two offsets and the terminator is five words. a padding
	// word is required
	odd := &hunk.RelocWordBlock{Kind: hunk.HUNK_RELOC32SHORT, Groups: []hunk.RelocGroup{
		{Hunk: 1, Offsets: []uint32{4, 8}},
	}}
	data, err := hunk.EncodeBlock(odd)
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, data, words(2, 1, 4, 8, 0, 0))

	blk, n, err := hunk.DecodeBlock(hunk.HUNK_RELOC32SHORT, data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(data))
	test.ExpectDeepEquality(t, blk, odd)

	// one offset makes four words. no padding
	even := &hunk.RelocWordBlock{Kind: hunk.HUNK_RELOC32SHORT, Groups: []hunk.RelocGroup{
		{Hunk: 0, Offsets: []uint32{12}},
	}}
	data, err = hunk.EncodeBlock(even)
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, data, words(1, 0, 12, 0))

	blk, n, err = hunk.DecodeBlock(hunk.HUNK_RELOC32SHORT, data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(data))
	test.ExpectDeepEquality(t, blk, even)

	// offsets that don't fit in a word
	_, err = hunk.EncodeBlock(&hunk.RelocWordBlock{Kind: hunk.HUNK_RELOC32SHORT, Groups: []hunk.RelocGroup{
		{Hunk: 0, Offsets: []uint32{0x10000}},
	}})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))
}

func TestRelocLong(t *testing.T) {
	payload := longs(2, 0, 4, 8, 1, 1, 0x20000, 0)
	blk, n, err := hunk.DecodeBlock(hunk.HUNK_ABSRELOC32, payload)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(payload))
	test.ExpectDeepEquality(t, blk, &hunk.RelocLongBlock{Kind: hunk.HUNK_ABSRELOC32, Groups: []hunk.RelocGroup{
		{Hunk: 0, Offsets: []uint32{4, 8}},
		{Hunk: 1, Offsets: []uint32{0x20000}},
	}})

	data, err := hunk.EncodeBlock(blk)
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, data, payload)

	// missing terminator
	_, _, err = hunk.DecodeBlock(hunk.HUNK_ABSRELOC32, longs(1, 0, 4))
	test.ExpectSuccess(t, curated.Has(err, faults.MalformedStream))
}

func TestExt(t *testing.T) {
	ext := &hunk.ExtBlock{Entries: []hunk.ExtEntry{
		{Name: "_main", Type: hunk.EXT_DEF, Value: 0x24},
		{Name: "_buf", Type: hunk.EXT_ABSCOMMON, CommonSize: 0x100},
		{Name: "_printf", Type: hunk.EXT_ABSREF32, Offsets: []uint32{2, 10}},
	}}

	data, err := hunk.EncodeBlock(ext)
	test.DemandSuccess(t, err)

	expected := join(
		longs(0x01000002), []byte("_main\x00\x00\x00"), longs(0x24),
		longs(0x82000001), []byte("_buf"), longs(0x100),
		longs(0x81000002), []byte("_printf\x00"), longs(2, 2, 10),
		longs(0),
	)
	test.ExpectBytes(t, data, expected)

	blk, n, err := hunk.DecodeBlock(hunk.HUNK_EXT, data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(data))
	test.ExpectDeepEquality(t, blk, ext)
}

func TestExtCommon(t *testing.T) {
	// a common symbol is followed directly by the next entry
	payload := join(
		longs(0x82000001), []byte("_buf"), longs(0x100),
		longs(0x01000001), []byte("_foo"), longs(0x10),
		longs(0),
	)

	blk, n, err := hunk.DecodeBlock(hunk.HUNK_EXT, payload)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(payload))
	test.ExpectDeepEquality(t, blk, &hunk.ExtBlock{Entries: []hunk.ExtEntry{
		{Name: "_buf", Type: hunk.EXT_ABSCOMMON, CommonSize: 0x100},
		{Name: "_foo", Type: hunk.EXT_DEF, Value: 0x10},
	}})

	// offsets are not part of a common symbol
	data, err := hunk.EncodeBlock(&hunk.ExtBlock{Entries: []hunk.ExtEntry{
		{Name: "_buf", Type: hunk.EXT_ABSCOMMON, CommonSize: 0x100, Offsets: []uint32{8}},
	}})
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, data, join(longs(0x82000001), []byte("_buf"), longs(0x100), longs(0)))

	// truncated after the name
	_, _, err = hunk.DecodeBlock(hunk.HUNK_EXT, join(longs(0x82000001), []byte("_buf")))
	test.ExpectSuccess(t, curated.Has(err, faults.MalformedStream))
}

func TestDebugAndOverlay(t *testing.T) {
	blk, n, err := hunk.DecodeBlock(hunk.HUNK_DEBUG, join(longs(2), []byte("ABCDEFGH")))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, 12)
	test.ExpectBytes(t, blk.(*hunk.DebugBlock).Data, []byte("ABCDEFGH"))

	// debug data is padded to a longword boundary
	data, err := hunk.EncodeBlock(&hunk.DebugBlock{Data: []byte("ABCDE")})
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, data, join(longs(2), []byte("ABCDE\x00\x00\x00")))

	blk, _, err = hunk.DecodeBlock(hunk.HUNK_OVERLAY, join(longs(1), []byte("OVLY")))
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, blk.(*hunk.OverlayBlock).Data, []byte("OVLY"))
}

func TestEncodeWrongType(t *testing.T) {
	_, err := hunk.EncodeBlock(&hunk.RelocLongBlock{Kind: hunk.HUNK_SYMBOL})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))

	_, err = hunk.EncodeBlock(&hunk.SegmentBlock{Kind: hunk.HUNK_END})
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))

	_, err = hunk.EncodeBlock(&hunk.SegmentBlock{Kind: hunk.HUNK_PPC_CODE})
	test.ExpectSuccess(t, curated.Has(err, faults.UnsupportedTag))
}

func TestIndex(t *testing.T) {
	idx := &hunk.IndexBlock{
		StringTable: []byte("foo\x00bar\x00"),
		Units: []hunk.IndexUnit{
			{
				NameOffset: 0,
				Hunks: []hunk.IndexHunk{
					{
						NameOffset: 0,
						HunkLongs:  2,
						Refs:       []uint16{4},
						Defs:       []hunk.IndexDef{{NameOffset: 4, Value: 0x10, SymCType: 1}},
					},
				},
			},
		},
	}

	test.ExpectEquality(t, idx.Name(0), "foo")
	test.ExpectEquality(t, idx.Name(4), "bar")
	test.ExpectEquality(t, idx.Name(100), "")

	// string table is five words, unit record is three words and the hunk
	// record is nine words. seventeen words needs one word of padding
	data, err := hunk.EncodeBlock(idx)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(data), 40)
	test.ExpectBytes(t, data[:4], longs(9))
	test.ExpectBytes(t, data[38:], words(0))

	blk, n, err := hunk.DecodeBlock(hunk.HUNK_INDEX, data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(data))
	test.ExpectDeepEquality(t, blk, idx)
}

func TestIndexLenientPadding(t *testing.T) {
	// the value of the padding word is ignored
	data := join(longs(3), words(2), []byte("a\x00"), words(0, 0, 0, 0xffff))
	blk, n, err := hunk.DecodeBlock(hunk.HUNK_INDEX, data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, len(data))
	test.ExpectEquality(t, len(blk.(*hunk.IndexBlock).Units), 1)
}
