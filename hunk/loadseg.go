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

package hunk

import (
	"fmt"
	"math"
	"strings"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/faults"
	"github.com/jetsetilly/gohunk/logger"
)

// LoadSegment is a segment of an executable and the blocks that belong to it.
type LoadSegment struct {
	SegBlock    *SegmentBlock
	SymbolBlock *SymbolBlock

	// RelocBlocks are either *RelocLongBlock or *RelocWordBlock
	RelocBlocks []Block
	DebugBlocks []*DebugBlock

	// the size of the segment as declared by the header. this can be larger
	// than the size of SegBlock, most commonly for HUNK_BSS
	SizeLongs uint32

	// memory attribute bits for the segment from the header
	MemFlags uint32

	// the blocks in the order they were read. nil if the segment was not
	// assembled from a file
	Blocks []Block
}

// SizeBytes returns the declared size of the segment in bytes.
func (s *LoadSegment) SizeBytes() uint32 {
	return s.SizeLongs * 4
}

func (s *LoadSegment) String() string {
	b := strings.Builder{}
	if s.SegBlock != nil {
		b.WriteString(fmt.Sprintf("%v (%d bytes)", s.SegBlock.Kind, s.SizeBytes()))
	} else {
		b.WriteString("no segment block")
	}
	if len(s.RelocBlocks) > 0 {
		b.WriteString(fmt.Sprintf(" relocs=%s", strings.Join(BlockNames(s.RelocBlocks), ",")))
	}
	if len(s.DebugBlocks) > 0 {
		b.WriteString(fmt.Sprintf(" debug=%d", len(s.DebugBlocks)))
	}
	if s.SymbolBlock != nil {
		b.WriteString(fmt.Sprintf(" symbols=%d", len(s.SymbolBlock.Symbols)))
	}
	return b.String()
}

// newSegment creates a LoadSegment with segment block data padded to a
// multiple of four bytes.
func newSegment(kind ID, data []byte) *LoadSegment {
	data = padLong(data)
	sz := uint32(len(data) / 4)
	return &LoadSegment{
		SegBlock: &SegmentBlock{
			Kind:      kind,
			SizeLongs: sz,
			Data:      data,
		},
		SizeLongs: sz,
	}
}

// NewCodeSegment creates a LoadSegment for a HUNK_CODE block.
func NewCodeSegment(data []byte) *LoadSegment {
	return newSegment(HUNK_CODE, data)
}

// NewDataSegment creates a LoadSegment for a HUNK_DATA block.
func NewDataSegment(data []byte) *LoadSegment {
	return newSegment(HUNK_DATA, data)
}

// NewBSSSegment creates a LoadSegment for a HUNK_BSS block of at least
// sizeBytes.
func NewBSSSegment(sizeBytes uint32) *LoadSegment {
	sz := uint32((uint64(sizeBytes) + 3) / 4)
	return &LoadSegment{
		SegBlock: &SegmentBlock{
			Kind:      HUNK_BSS,
			SizeLongs: sz,
		},
		SizeLongs: sz,
	}
}

// SetRelocs replaces the relocation blocks of the segment with a single block.
// The word form is used unless an offset does not fit in 16 bits or if
// forceLong is true.
func (s *LoadSegment) SetRelocs(groups []RelocGroup, forceLong bool) {
	s.Blocks = nil
	if len(groups) == 0 {
		s.RelocBlocks = nil
		return
	}
	if forceLong || !fitsWord(groups) {
		s.RelocBlocks = []Block{&RelocLongBlock{Kind: HUNK_ABSRELOC32, Groups: groups}}
		return
	}
	s.RelocBlocks = []Block{&RelocWordBlock{Kind: HUNK_RELOC32SHORT, Groups: groups}}
}

func fitsWord(groups []RelocGroup) bool {
	for _, g := range groups {
		if g.Hunk > math.MaxUint16 || len(g.Offsets) > math.MaxUint16 {
			return false
		}
		for _, o := range g.Offsets {
			if o > math.MaxUint16 {
				return false
			}
		}
	}
	return true
}

// SetSymbols replaces the symbol block of the segment.
func (s *LoadSegment) SetSymbols(symbols []SymbolEntry) {
	s.Blocks = nil
	if len(symbols) == 0 {
		s.SymbolBlock = nil
		return
	}
	s.SymbolBlock = &SymbolBlock{Symbols: symbols}
}

// AddDebug adds a debug block with the data to the segment.
func (s *LoadSegment) AddDebug(data []byte) {
	s.Blocks = nil
	s.DebugBlocks = append(s.DebugBlocks, &DebugBlock{Data: data})
}

// LoadSegFile is an executable. A header and a list of segments.
type LoadSegFile struct {
	Header   *HeaderBlock
	Segments []*LoadSegment
}

// ParseLoadSegFile assembles the blocks of an executable. The first block must
// be the header.
func ParseLoadSegFile(blocks []Block) (*LoadSegFile, error) {
	if len(blocks) == 0 {
		return nil, curated.Errorf("hunk: %v", faults.Mismatch("no hunk blocks found"))
	}
	hdr, ok := blocks[0].(*HeaderBlock)
	if !ok {
		return nil, curated.Errorf("hunk: %v", faults.Mismatch("no header (first block is %v)", blocks[0].ID()))
	}

	segs, err := Assemble(hdr, blocks[1:])
	if err != nil {
		return nil, err
	}

	return &LoadSegFile{
		Header:   hdr,
		Segments: segs,
	}, nil
}

// Assemble groups the blocks that follow the header of an executable into
// segments. The number of segments must match the header.
func Assemble(hdr *HeaderBlock, blocks []Block) ([]*LoadSegment, error) {
	// split blocks into runs separated by HUNK_END
	var runs [][]Block
	var cur []Block
	for _, blk := range blocks {
		id := blk.ID()
		if id == HUNK_END {
			if cur != nil {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		if !id.IsSegment() && !id.isLoadSegExtra() {
			return nil, curated.Errorf("hunk: %v", faults.Mismatch("invalid block in executable: %v", id))
		}
		cur = append(cur, blk)
	}
	if cur != nil {
		runs = append(runs, cur)
	}

	// split runs that contain more than one segment block. some files are
	// missing the HUNK_END between segments
	var split [][]Block
	for _, run := range runs {
		n := 0
		for _, blk := range run {
			if blk.ID().IsSegment() {
				n++
			}
		}

		switch n {
		case 0:
			return nil, curated.Errorf("hunk: %v", faults.Mismatch("block run without a segment: %s",
				strings.Join(BlockNames(run), ",")))
		case 1:
			split = append(split, run)
		default:
			logger.Logf(logger.Allow, "hunk", "splitting run of %d blocks into %d segments", len(run), n)
			var part []Block
			for _, blk := range run {
				if blk.ID().IsSegment() {
					part = []Block{blk}
					split = append(split, part)
				} else if part != nil {
					part = append(part, blk)
					split[len(split)-1] = part
				} else {
					return nil, curated.Errorf("hunk: %v", faults.Mismatch("cannot split block run: %v before first segment", blk.ID()))
				}
			}
		}
	}

	if len(split) != len(hdr.HunkTable) {
		return nil, curated.Errorf("hunk: %v", faults.Mismatch("%d segments found but header declares %d",
			len(split), len(hdr.HunkTable)))
	}

	segs := make([]*LoadSegment, 0, len(split))
	for i, run := range split {
		s, err := assembleSegment(run)
		if err != nil {
			return nil, curated.Errorf("hunk: segment %d: %v", i, err)
		}
		s.SizeLongs = hdr.HunkTable[i]
		if i < len(hdr.MemFlags) {
			s.MemFlags = hdr.MemFlags[i]
		}
		segs = append(segs, s)
	}

	return segs, nil
}

func assembleSegment(run []Block) (*LoadSegment, error) {
	s := &LoadSegment{Blocks: run}
	for _, blk := range run {
		switch b := blk.(type) {
		case *SegmentBlock:
			s.SegBlock = b
		case *SymbolBlock:
			if s.SymbolBlock != nil {
				return nil, faults.Mismatch("duplicate %v", HUNK_SYMBOL)
			}
			s.SymbolBlock = b
		case *DebugBlock:
			s.DebugBlocks = append(s.DebugBlocks, b)
		case *RelocLongBlock:
			if b.Kind != HUNK_ABSRELOC32 {
				return nil, faults.Mismatch("invalid block in segment: %v", b.Kind)
			}
			s.RelocBlocks = append(s.RelocBlocks, b)
		case *RelocWordBlock:
			s.RelocBlocks = append(s.RelocBlocks, b)
		default:
			return nil, faults.Mismatch("invalid block in segment: %v", blk.ID())
		}
	}
	return s, nil
}

// Blocks returns the blocks for the executable, including a new header. The
// blocks of each segment are in a fixed order: the segment block, relocation
// blocks, debug blocks, the symbol block and finally HUNK_END.
func (f *LoadSegFile) Blocks() ([]Block, error) {
	sizes := make([]uint32, len(f.Segments))
	flags := make([]uint32, len(f.Segments))
	var blocks []Block

	for i, s := range f.Segments {
		if s.SegBlock == nil {
			return nil, curated.Errorf("hunk: %v", faults.Mismatch("segment %d has no segment block", i))
		}

		sizes[i] = s.SizeLongs
		if sizes[i] == 0 {
			sizes[i] = s.SegBlock.SizeLongs
		}
		flags[i] = s.MemFlags

		blocks = append(blocks, s.SegBlock)
		blocks = append(blocks, s.RelocBlocks...)
		for _, d := range s.DebugBlocks {
			blocks = append(blocks, d)
		}
		if s.SymbolBlock != nil {
			blocks = append(blocks, s.SymbolBlock)
		}
		blocks = append(blocks, &EndBlock{})
	}

	hdr := NewHeaderBlock(sizes)
	hdr.MemFlags = flags
	if f.Header != nil {
		hdr.ResidentLibs = f.Header.ResidentLibs
	}
	f.Header = hdr

	return append([]Block{hdr}, blocks...), nil
}
