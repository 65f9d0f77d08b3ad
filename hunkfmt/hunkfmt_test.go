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

package hunkfmt_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/faults"
	"github.com/jetsetilly/gohunk/hunk"
	"github.com/jetsetilly/gohunk/hunkfmt"
	"github.com/jetsetilly/gohunk/program"
	"github.com/jetsetilly/gohunk/test"
)

// options for comparing program images that have been through a file
var imageOpts = []cmp.Option{
	cmp.AllowUnexported(program.Segment{}),
	cmpopts.IgnoreFields(program.Image{}, "Source"),
	cmpopts.IgnoreFields(program.Segment{}, "DataOffset"),
}

func exampleImage() *program.Image {
	img := &program.Image{}

	code := program.NewSegment(program.Code, 16, []byte{
		0x4e, 0xb9, 0x00, 0x00, 0x00, 0x00,
		0x41, 0xf9, 0x00, 0x00, 0x00, 0x04,
		0x4e, 0x75, 0x4e, 0x71,
	})
	code.AddRelocations(0, program.NewReloc(2))
	code.AddRelocations(1, program.NewReloc(8))
	code.Symbols = &program.SymbolTable{}
	code.Symbols.Add(program.Symbol{Name: "_start", Offset: 0})
	code.Symbols.Add(program.Symbol{Name: "_exit", Offset: 12})

	f := program.NewDebugLineFile("src/main.c", 0)
	f.Add(program.NewDebugLineEntry(0, 10))
	f.Add(program.NewDebugLineEntry(6, 0x8000000b))
	code.DebugLine = &program.DebugLine{}
	code.DebugLine.Add(f)
	img.AddSegment(code)

	data := program.NewSegment(program.Data, 8, []byte{0, 0, 0, 0, 0, 0, 0, 8})
	data.AddRelocations(2, program.NewReloc(4))
	img.AddSegment(data)

	img.AddSegment(program.NewSegment(program.BSS, 0x400, nil))

	return img
}

func TestRoundTrip(t *testing.T) {
	img := exampleImage()

	w := &test.CompareWriter{}
	test.DemandSuccess(t, hunkfmt.Save(w, img, false))

	ok, err := hunkfmt.IsImage(bytes.NewReader(w.Bytes()))
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, ok)

	loaded, err := hunkfmt.LoadBytes(w.Bytes())
	test.DemandSuccess(t, err)
	test.ExpectDeepEquality(t, loaded, img, imageOpts...)

	// the source of the loaded image is the executable
	_, ok = loaded.Source.(*hunk.LoadSegFile)
	test.ExpectSuccess(t, ok)

	// data offsets point into the file
	off := loaded.Segments[0].DataOffset
	test.ExpectBytes(t, w.Bytes()[off:off+16], img.Segments[0].Data)

	// saving again produces the same file
	w2 := &test.CompareWriter{}
	test.DemandSuccess(t, hunkfmt.Save(w2, loaded, false))
	test.ExpectBytes(t, w2.Bytes(), w.Bytes())
}

// randomImage creates an image with a random layout. Segment sizes and
// relocation offsets are multiples of four
func randomImage(rnd *rand.Rand) *program.Image {
	img := &program.Image{}
	flags := []uint32{0, 0x40000000, 0x80000000}

	n := 1 + rnd.Intn(6)
	for i := 0; i < n; i++ {
		size := uint32(4 + rnd.Intn(64)*4)

		var s *program.Segment
		switch rnd.Intn(3) {
		case 0:
			s = program.NewSegment(program.BSS, size, nil)
		case 1:
			data := make([]byte, size)
			rnd.Read(data)
			s = program.NewSegment(program.Data, size, data)
		default:
			data := make([]byte, size)
			rnd.Read(data)
			s = program.NewSegment(program.Code, size, data)
		}
		s.Flags = flags[rnd.Intn(len(flags))]
		img.AddSegment(s)
	}

	for _, s := range img.Segments {
		if s.Type != program.BSS {
			for r := rnd.Intn(8); r > 0; r-- {
				off := uint32(rnd.Intn(int(s.Size)/4)) * 4
				s.AddRelocations(rnd.Intn(n), program.NewReloc(off))
			}
		}

		if rnd.Intn(2) == 0 {
			s.Symbols = &program.SymbolTable{}
			for y := 1 + rnd.Intn(4); y > 0; y-- {
				s.Symbols.Add(program.Symbol{
					Name:   fmt.Sprintf("_sym%d", rnd.Intn(1000)),
					Offset: rnd.Uint32(),
				})
			}
		}

		if rnd.Intn(2) == 0 {
			s.DebugLine = &program.DebugLine{}
			for f := 1 + rnd.Intn(2); f > 0; f-- {
				path := fmt.Sprintf("file%d.c", rnd.Intn(100))
				if rnd.Intn(2) == 0 {
					path = "src/" + path
				}
				lf := program.NewDebugLineFile(path, uint32(rnd.Intn(0x100))*4)
				for e := 1 + rnd.Intn(5); e > 0; e-- {
					packed := uint32(rnd.Intn(0x1000000)) | uint32(rnd.Intn(0x100))<<24
					lf.Add(program.NewDebugLineEntry(uint32(rnd.Intn(int(s.Size))), packed))
				}
				s.DebugLine.Add(lf)
			}
		}
	}

	return img
}

func TestRoundTripRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(2600))

	for i := 0; i < 200; i++ {
		img := randomImage(rnd)
		forceLong := rnd.Intn(2) == 0

		w := &test.CompareWriter{}
		test.DemandSuccess(t, hunkfmt.Save(w, img, forceLong), i)

		loaded, err := hunkfmt.LoadBytes(w.Bytes())
		test.DemandSuccess(t, err, i)
		test.ExpectDeepEquality(t, loaded, img, imageOpts...)
	}
}

func TestRoundTripForceLong(t *testing.T) {
	img := exampleImage()

	lsf, err := hunkfmt.FromImage(img, true)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, lsf.Segments[0].RelocBlocks[0].ID(), hunk.HUNK_ABSRELOC32)

	loaded, err := hunkfmt.ToImage(lsf)
	test.DemandSuccess(t, err)
	test.ExpectDeepEquality(t, loaded, img, imageOpts...)
}

func TestRelocForm(t *testing.T) {
	img := &program.Image{}
	img.AddSegment(program.NewSegment(program.Data, 0x10010, nil))

	// offsets that fit in a word use the short form
	img.Segments[0].AddRelocations(0, program.NewReloc(0xfff0))
	lsf, err := hunkfmt.FromImage(img, false)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, lsf.Segments[0].RelocBlocks[0].ID(), hunk.HUNK_RELOC32SHORT)

	// an offset that doesn't fit forces the long form
	img.Segments[0].AddRelocations(0, program.NewReloc(0x10008))
	lsf, err = hunkfmt.FromImage(img, false)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, lsf.Segments[0].RelocBlocks[0].ID(), hunk.HUNK_ABSRELOC32)

	// the declared size is kept even though there is no data
	test.ExpectEquality(t, lsf.Segments[0].SizeLongs, uint32(0x4004))
	test.ExpectEquality(t, lsf.Segments[0].SegBlock.SizeLongs, uint32(0))
}

func TestAddend(t *testing.T) {
	img := &program.Image{}
	img.AddSegment(program.NewSegment(program.Code, 8, make([]byte, 8)))
	img.Segments[0].AddRelocations(0, program.Reloc{Offset: 0, Width: program.LongWidth, Addend: 4})

	_, err := hunkfmt.FromImage(img, false)
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))
}

func TestRelocMerge(t *testing.T) {
	code := hunk.NewCodeSegment(make([]byte, 16))
	code.RelocBlocks = []hunk.Block{
		&hunk.RelocLongBlock{Kind: hunk.HUNK_ABSRELOC32, Groups: []hunk.RelocGroup{{Hunk: 0, Offsets: []uint32{0}}}},
		&hunk.RelocWordBlock{Kind: hunk.HUNK_RELOC32SHORT, Groups: []hunk.RelocGroup{{Hunk: 0, Offsets: []uint32{8}}}},
	}
	lsf := &hunk.LoadSegFile{Segments: []*hunk.LoadSegment{code}}

	img, err := hunkfmt.ToImage(lsf)
	test.DemandSuccess(t, err)
	test.ExpectDeepEquality(t, img.Segments[0].RelocTargets(), []int{0})
	test.ExpectDeepEquality(t, img.Segments[0].Relocations(0).Entries, []program.Reloc{
		program.NewReloc(0), program.NewReloc(8),
	})

	// relocation against a segment that doesn't exist
	code.RelocBlocks = []hunk.Block{
		&hunk.RelocLongBlock{Kind: hunk.HUNK_ABSRELOC32, Groups: []hunk.RelocGroup{{Hunk: 1, Offsets: []uint32{0}}}},
	}
	_, err = hunkfmt.ToImage(lsf)
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))
}

func TestLoadErrors(t *testing.T) {
	// object unit is not an executable
	data, err := hunk.WriteBytes([]hunk.Block{&hunk.UnitBlock{Name: "x"}}, false)
	test.DemandSuccess(t, err)

	ok, err := hunkfmt.IsImage(bytes.NewReader(data))
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, ok)

	_, err = hunkfmt.LoadBytes(data)
	test.ExpectSuccess(t, curated.Has(err, faults.StructuralMismatch))

	// truncated executable
	w := &test.CompareWriter{}
	test.DemandSuccess(t, hunkfmt.Save(w, exampleImage(), false))
	_, err = hunkfmt.LoadBytes(w.Bytes()[:len(w.Bytes())-10])
	test.ExpectSuccess(t, curated.Has(err, faults.MalformedStream))
}

func TestDebugLine(t *testing.T) {
	d := &hunkfmt.DebugLineInfo{
		SrcFile:    "dh0:src/prog.c",
		BaseOffset: 0x20,
		Entries: []hunkfmt.DebugLineEntry{
			{Offset: 0, SrcLine: 1},
			{Offset: 4, SrcLine: 0x01000002},
		},
	}

	data, err := hunkfmt.EncodeDebug(d)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(data), 8+4+16+16)
	test.ExpectBytes(t, data[4:8], []byte("LINE"))

	info, err := hunkfmt.DecodeDebug(data)
	test.DemandSuccess(t, err)
	test.ExpectDeepEquality(t, info, hunkfmt.DebugInfo(d))
}

func TestDebugHead(t *testing.T) {
	data := []byte("\x00\x00\x00\x10HEADDBGV01\x00\x00payload!")
	info, err := hunkfmt.DecodeDebug(data)
	test.DemandSuccess(t, err)

	a, ok := info.(*hunkfmt.DebugAnyInfo)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, a.Tag(), "HEAD")
	test.ExpectEquality(t, a.Base(), uint32(0x10))
	test.ExpectBytes(t, a.Data, []byte("payload!"))

	enc, err := hunkfmt.EncodeDebug(a)
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, enc, data)

	// signature is checked
	_, err = hunkfmt.DecodeDebug([]byte("\x00\x00\x00\x10HEADDBGV02\x00\x00"))
	test.ExpectSuccess(t, curated.Has(err, faults.MalformedStream))
}

func TestDebugOther(t *testing.T) {
	data := []byte("\x00\x00\x00\x00OPTSsome")
	info, err := hunkfmt.DecodeDebug(data)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, info.Tag(), "OPTS")
	test.ExpectBytes(t, info.(*hunkfmt.DebugAnyInfo).Data, []byte("some"))

	// too short for a tag
	info, err = hunkfmt.DecodeDebug([]byte("\x00\x00\x00\x00LINE"))
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, info == nil)
}
