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

package hunkfmt

import (
	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/faults"
	"github.com/jetsetilly/gohunk/hunk"
	"github.com/jetsetilly/gohunk/logger"
	"github.com/jetsetilly/gohunk/program"
)

// ToImage creates a program image from an assembled executable. The
// LoadSegFile is kept as the Source of the image.
func ToImage(lsf *hunk.LoadSegFile) (*program.Image, error) {
	img := &program.Image{Source: lsf}

	for i, ls := range lsf.Segments {
		if ls.SegBlock == nil {
			return nil, curated.Errorf("hunkfmt: %v", faults.Mismatch("segment %d has no segment block", i))
		}

		var typ program.SegmentType
		switch ls.SegBlock.Kind {
		case hunk.HUNK_CODE:
			typ = program.Code
		case hunk.HUNK_DATA:
			typ = program.Data
		case hunk.HUNK_BSS:
			typ = program.BSS
		default:
			return nil, curated.Errorf("hunkfmt: %v", faults.Mismatch("segment %d is an unsupported type (%v)", i, ls.SegBlock.Kind))
		}

		s := program.NewSegment(typ, ls.SizeBytes(), ls.SegBlock.Data)
		s.DataOffset = ls.SegBlock.DataOffset
		s.Flags = ls.MemFlags
		img.AddSegment(s)
	}

	for i, ls := range lsf.Segments {
		s := img.Segments[i]

		for _, blk := range ls.RelocBlocks {
			var groups []hunk.RelocGroup
			switch r := blk.(type) {
			case *hunk.RelocLongBlock:
				groups = r.Groups
			case *hunk.RelocWordBlock:
				groups = r.Groups
			default:
				return nil, curated.Errorf("hunkfmt: %v", faults.Mismatch("segment %d has invalid relocation block (%v)", i, blk.ID()))
			}

			for _, g := range groups {
				if int(g.Hunk) >= len(img.Segments) {
					return nil, curated.Errorf("hunkfmt: %v", faults.Mismatch("segment %d relocates against missing segment %d", i, g.Hunk))
				}
				entries := make([]program.Reloc, len(g.Offsets))
				for j, o := range g.Offsets {
					entries[j] = program.NewReloc(o)
				}
				s.AddRelocations(int(g.Hunk), entries...)
			}
		}

		if ls.SymbolBlock != nil && len(ls.SymbolBlock.Symbols) > 0 {
			s.Symbols = &program.SymbolTable{}
			for _, sym := range ls.SymbolBlock.Symbols {
				s.Symbols.Add(program.Symbol{Name: sym.Name, Offset: sym.Value})
			}
		}

		for _, blk := range ls.DebugBlocks {
			info, err := DecodeDebug(blk.Data)
			if err != nil {
				return nil, curated.Errorf("hunkfmt: segment %d: %v", i, err)
			}

			switch d := info.(type) {
			case *DebugLineInfo:
				if s.DebugLine == nil {
					s.DebugLine = &program.DebugLine{}
				}
				f := program.NewDebugLineFile(d.SrcFile, d.BaseOffset)
				for _, e := range d.Entries {
					f.Add(program.NewDebugLineEntry(e.Offset, e.SrcLine))
				}
				s.DebugLine.Add(f)
			case *DebugAnyInfo:
				logger.Logf(logger.Allow, "hunkfmt", "segment %d: debug info %v not kept", i, d)
			}
		}
	}

	if err := img.Validate(); err != nil {
		return nil, curated.Errorf("hunkfmt: %v", err)
	}

	logger.Logf(logger.Allow, "hunkfmt", "image with %d segments (%d bytes)", len(img.Segments), img.Size())

	return img, nil
}

// FromImage creates an executable from a program image. Relocations use the
// short form unless an offset does not fit in 16 bits or forceLong is true.
func FromImage(img *program.Image, forceLong bool) (*hunk.LoadSegFile, error) {
	if err := img.Validate(); err != nil {
		return nil, curated.Errorf("hunkfmt: %v", err)
	}

	lsf := &hunk.LoadSegFile{}

	for i, s := range img.Segments {
		var ls *hunk.LoadSegment
		switch s.Type {
		case program.Code:
			ls = hunk.NewCodeSegment(s.Data)
		case program.Data:
			ls = hunk.NewDataSegment(s.Data)
		case program.BSS:
			ls = hunk.NewBSSSegment(s.Size)
		default:
			return nil, curated.Errorf("hunkfmt: %v", faults.Mismatch("segment %d is an unsupported type (%v)", i, s.Type))
		}

		// the declared size can be larger than the data
		if sz := (s.Size + 3) / 4; sz > ls.SizeLongs {
			ls.SizeLongs = sz
		}
		ls.MemFlags = s.Flags

		var groups []hunk.RelocGroup
		for _, to := range s.RelocTargets() {
			r := s.Relocations(to)
			g := hunk.RelocGroup{Hunk: uint32(to)}
			for _, e := range r.Entries {
				if e.Addend != 0 {
					return nil, curated.Errorf("hunkfmt: %v", faults.Mismatch("segment %d: relocation at %v has an addend", i, e))
				}
				g.Offsets = append(g.Offsets, e.Offset)
			}
			groups = append(groups, g)
		}
		ls.SetRelocs(groups, forceLong)

		if s.Symbols != nil {
			syms := make([]hunk.SymbolEntry, 0, len(s.Symbols.Symbols))
			for _, sym := range s.Symbols.Symbols {
				syms = append(syms, hunk.SymbolEntry{Name: sym.Name, Value: sym.Offset})
			}
			ls.SetSymbols(syms)
		}

		if s.DebugLine != nil {
			for _, f := range s.DebugLine.Files {
				d := &DebugLineInfo{
					SrcFile:    f.SrcPath(),
					BaseOffset: f.BaseOffset,
				}
				for _, e := range f.Entries {
					d.Entries = append(d.Entries, DebugLineEntry{Offset: e.Offset, SrcLine: e.Packed()})
				}
				data, err := EncodeDebug(d)
				if err != nil {
					return nil, curated.Errorf("hunkfmt: segment %d: %v", i, err)
				}
				ls.AddDebug(data)
			}
		}

		lsf.Segments = append(lsf.Segments, ls)
	}

	return lsf, nil
}
