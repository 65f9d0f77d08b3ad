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

package program

import (
	"fmt"
	"sort"
	"strings"
)

// SegmentType is the kind of memory a segment occupies.
type SegmentType int

// List of segment types.
const (
	Code SegmentType = iota
	Data
	BSS
)

func (t SegmentType) String() string {
	switch t {
	case Code:
		return "CODE"
	case Data:
		return "DATA"
	case BSS:
		return "BSS"
	}
	return fmt.Sprintf("unknown segment type (%d)", int(t))
}

// LongWidth is the width in bytes of a relocated field. It is the only width
// supported.
const LongWidth = 4

// Reloc is a field in a segment that must be patched with the address of the
// target segment.
type Reloc struct {
	Offset uint32
	Width  int
	Addend int32
}

// NewReloc creates a Reloc for a longword field with no addend.
func NewReloc(offset uint32) Reloc {
	return Reloc{Offset: offset, Width: LongWidth}
}

func (r Reloc) String() string {
	if r.Addend != 0 {
		return fmt.Sprintf("%#06x%+d", r.Offset, r.Addend)
	}
	return fmt.Sprintf("%#06x", r.Offset)
}

// Relocations is the set of fields in a segment that refer to a single target
// segment.
type Relocations struct {
	To      int
	Entries []Reloc
}

// Segment is a single code, data or bss region of a program.
type Segment struct {
	// the position of the segment in the Image. relocations refer to
	// segments by this value
	ID int

	Type SegmentType

	// size of the segment in bytes. this may be larger than Data
	Size uint32

	// nil for BSS segments
	Data []byte

	// the position of Data in the file the segment was loaded from
	DataOffset int

	// memory attribute bits from the file. not interpreted
	Flags uint32

	Symbols   *SymbolTable
	DebugLine *DebugLine

	// keyed by target segment ID
	relocs map[int]*Relocations
}

// NewSegment creates a Segment. The ID is assigned when the segment is added
// to an Image.
func NewSegment(typ SegmentType, size uint32, data []byte) *Segment {
	return &Segment{
		Type: typ,
		Size: size,
		Data: data,
	}
}

// Name returns a name for the segment based on its ID.
func (s *Segment) Name() string {
	return fmt.Sprintf("SEG_%02d", s.ID)
}

// AddRelocations adds entries to the relocations for the target segment. If
// there are already relocations for the target the entries are appended.
func (s *Segment) AddRelocations(to int, entries ...Reloc) {
	if s.relocs == nil {
		s.relocs = make(map[int]*Relocations)
	}
	r, ok := s.relocs[to]
	if !ok {
		r = &Relocations{To: to}
		s.relocs[to] = r
	}
	r.Entries = append(r.Entries, entries...)
}

// RelocTargets returns the IDs of the segments referred to by relocations,
// in ascending order.
func (s *Segment) RelocTargets() []int {
	t := make([]int, 0, len(s.relocs))
	for to := range s.relocs {
		t = append(t, to)
	}
	sort.Ints(t)
	return t
}

// Relocations returns the relocations for the target segment. Returns nil if
// there are none.
func (s *Segment) Relocations(to int) *Relocations {
	return s.relocs[to]
}

// NumRelocs returns the number of relocation entries for all targets.
func (s *Segment) NumRelocs() int {
	n := 0
	for _, r := range s.relocs {
		n += len(r.Entries)
	}
	return n
}

// FindReloc returns the relocation that covers the offset and the ID of its
// target segment.
func (s *Segment) FindReloc(offset uint32) (int, Reloc, bool) {
	for _, to := range s.RelocTargets() {
		for _, r := range s.relocs[to].Entries {
			if offset >= r.Offset && offset < r.Offset+uint32(r.Width) {
				return to, r, true
			}
		}
	}
	return 0, Reloc{}, false
}

// FindSymbol returns the symbol at the offset.
func (s *Segment) FindSymbol(offset uint32) (Symbol, bool) {
	if s.Symbols == nil {
		return Symbol{}, false
	}
	return s.Symbols.Find(offset)
}

// FindDebugLine returns the source line entry at the offset and the file it
// belongs to.
func (s *Segment) FindDebugLine(offset uint32) (*DebugLineFile, DebugLineEntry, bool) {
	if s.DebugLine == nil {
		return nil, DebugLineEntry{}, false
	}
	return s.DebugLine.Find(offset)
}

func (s *Segment) String() string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("[#%d:%s:size=%d", s.ID, s.Type, s.Size))
	if s.Data != nil {
		b.WriteString(fmt.Sprintf(",data=%d", len(s.Data)))
	}
	for _, to := range s.RelocTargets() {
		b.WriteString(fmt.Sprintf(",reloc(#%d)=%d", to, len(s.relocs[to].Entries)))
	}
	if s.Symbols != nil {
		b.WriteString(fmt.Sprintf(",symbols=%d", len(s.Symbols.Symbols)))
	}
	if s.DebugLine != nil {
		b.WriteString(fmt.Sprintf(",lines=%d", len(s.DebugLine.Files)))
	}
	b.WriteString("]")
	return b.String()
}
