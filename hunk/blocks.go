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
	"math"

	"golang.org/x/crypto/cryptobyte"

	"github.com/jetsetilly/gohunk/faults"
)

// Block is implemented by every type of block that can be found in a hunk
// file.
type Block interface {
	ID() ID
}

// sizeMask removes the memory attribute bits from a size in the header table.
const sizeMask = 0x3fffffff

// HeaderBlock is the first block in an executable. It lists the size of
// every segment.
type HeaderBlock struct {
	ResidentLibs []string
	TableSize    uint32
	FirstHunk    uint32
	LastHunk     uint32

	// the size of each segment in longwords
	HunkTable []uint32

	// the memory attribute bits that were removed from each entry of HunkTable.
	// they are restored when the header is encoded
	MemFlags []uint32
}

// NewHeaderBlock creates a header for a list of segment sizes. The sizes are
// in longwords.
func NewHeaderBlock(sizes []uint32) *HeaderBlock {
	h := &HeaderBlock{
		TableSize: uint32(len(sizes)),
		HunkTable: append([]uint32{}, sizes...),
		MemFlags:  make([]uint32, len(sizes)),
	}
	if len(sizes) > 0 {
		h.LastHunk = uint32(len(sizes) - 1)
	}
	return h
}

func (h *HeaderBlock) ID() ID { return HUNK_HEADER }

func decodeHeader(d *decoder, _ ID) (Block, error) {
	h := &HeaderBlock{}

	for {
		n, end, err := d.name()
		if err != nil {
			return nil, err
		}
		if end {
			break
		}
		h.ResidentLibs = append(h.ResidentLibs, n)
	}

	var err error
	if h.TableSize, err = d.long(); err != nil {
		return nil, err
	}
	if h.FirstHunk, err = d.long(); err != nil {
		return nil, err
	}
	if h.LastHunk, err = d.long(); err != nil {
		return nil, err
	}

	num := int64(h.LastHunk) - int64(h.FirstHunk) + 1
	if num < 0 {
		return nil, faults.Malformed("last hunk (%d) is before first hunk (%d)", h.LastHunk, h.FirstHunk)
	}
	if num*4 > int64(d.remaining()) {
		return nil, faults.ShortRead(d.offset(), int(num*4), d.remaining())
	}

	h.HunkTable = make([]uint32, num)
	h.MemFlags = make([]uint32, num)
	for i := range h.HunkTable {
		v, err := d.long()
		if err != nil {
			return nil, err
		}
		h.HunkTable[i] = v & sizeMask
		h.MemFlags[i] = v &^ sizeMask
	}

	return h, nil
}

func encodeHeader(b *cryptobyte.Builder, blk Block) error {
	h, ok := blk.(*HeaderBlock)
	if !ok {
		return wrongType(blk)
	}
	for _, n := range h.ResidentLibs {
		if n == "" {
			return faults.Mismatch("empty resident library name cannot be encoded")
		}
		addName(b, n, 0)
	}
	b.AddUint32(0)
	b.AddUint32(h.TableSize)
	b.AddUint32(h.FirstHunk)
	b.AddUint32(h.LastHunk)
	for i, s := range h.HunkTable {
		if i < len(h.MemFlags) {
			s |= h.MemFlags[i] &^ sizeMask
		}
		b.AddUint32(s)
	}
	return nil
}

// SegmentBlock is a HUNK_CODE, HUNK_DATA, HUNK_BSS or HUNK_PPC_CODE block.
type SegmentBlock struct {
	Kind      ID
	SizeLongs uint32

	// Data is nil for HUNK_BSS
	Data []byte

	// the position of Data in the stream it was read from
	DataOffset int
}

func (s *SegmentBlock) ID() ID { return s.Kind }

func decodeSegment(d *decoder, id ID) (Block, error) {
	s := &SegmentBlock{Kind: id}

	var err error
	if s.SizeLongs, err = d.long(); err != nil {
		return nil, err
	}

	if id != HUNK_BSS {
		s.DataOffset = d.offset()
		if s.Data, err = d.bytes(int(s.SizeLongs) * 4); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func encodeSegment(b *cryptobyte.Builder, blk Block) error {
	s, ok := blk.(*SegmentBlock)
	if !ok {
		return wrongType(blk)
	}
	b.AddUint32(s.SizeLongs)
	if s.Kind != HUNK_BSS {
		b.AddBytes(s.Data)
	}
	return nil
}

// RelocGroup is a list of offsets in the current segment that are to be
// relocated against the address of the target segment.
type RelocGroup struct {
	Hunk    uint32
	Offsets []uint32
}

// RelocLongBlock is a relocation block that stores every field as a longword.
// Used by HUNK_ABSRELOC32 and the other non-word relocation types.
type RelocLongBlock struct {
	Kind   ID
	Groups []RelocGroup
}

func (r *RelocLongBlock) ID() ID { return r.Kind }

func decodeRelocLong(d *decoder, id ID) (Block, error) {
	r := &RelocLongBlock{Kind: id}
	for {
		num, err := d.long()
		if err != nil {
			return nil, err
		}
		if num == 0 {
			break
		}
		if int64(num)*4+4 > int64(d.remaining()) {
			return nil, faults.ShortRead(d.offset(), int(num)*4+4, d.remaining())
		}

		g := RelocGroup{Offsets: make([]uint32, num)}
		if g.Hunk, err = d.long(); err != nil {
			return nil, err
		}
		for i := range g.Offsets {
			if g.Offsets[i], err = d.long(); err != nil {
				return nil, err
			}
		}
		r.Groups = append(r.Groups, g)
	}
	return r, nil
}

func encodeRelocLong(b *cryptobyte.Builder, blk Block) error {
	r, ok := blk.(*RelocLongBlock)
	if !ok {
		return wrongType(blk)
	}
	for _, g := range r.Groups {
		if len(g.Offsets) == 0 {
			continue
		}
		b.AddUint32(uint32(len(g.Offsets)))
		b.AddUint32(g.Hunk)
		for _, o := range g.Offsets {
			b.AddUint32(o)
		}
	}
	b.AddUint32(0)
	return nil
}

// RelocWordBlock is the short form of a relocation block. Every field is a
// word and the block is padded to a longword boundary.
type RelocWordBlock struct {
	Kind   ID
	Groups []RelocGroup
}

func (r *RelocWordBlock) ID() ID { return r.Kind }

func decodeRelocWord(d *decoder, id ID) (Block, error) {
	r := &RelocWordBlock{Kind: id}
	words := 0
	for {
		num, err := d.word()
		if err != nil {
			return nil, err
		}
		words++
		if num == 0 {
			break
		}

		g := RelocGroup{Offsets: make([]uint32, num)}
		hunk, err := d.word()
		if err != nil {
			return nil, err
		}
		g.Hunk = uint32(hunk)
		for i := range g.Offsets {
			o, err := d.word()
			if err != nil {
				return nil, err
			}
			g.Offsets[i] = uint32(o)
		}
		words += int(num) + 1
		r.Groups = append(r.Groups, g)
	}

	// the block ends on a longword boundary
	if words%2 == 1 {
		if _, err := d.word(); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func encodeRelocWord(b *cryptobyte.Builder, blk Block) error {
	r, ok := blk.(*RelocWordBlock)
	if !ok {
		return wrongType(blk)
	}
	words := 0
	for _, g := range r.Groups {
		if len(g.Offsets) == 0 {
			continue
		}
		if len(g.Offsets) > math.MaxUint16 || g.Hunk > math.MaxUint16 {
			return faults.Mismatch("relocation group for hunk %d does not fit in %s", g.Hunk, r.Kind)
		}
		b.AddUint16(uint16(len(g.Offsets)))
		b.AddUint16(uint16(g.Hunk))
		for _, o := range g.Offsets {
			if o > math.MaxUint16 {
				return faults.Mismatch("relocation offset %#x does not fit in %s", o, r.Kind)
			}
			b.AddUint16(uint16(o))
		}
		words += len(g.Offsets) + 2
	}
	b.AddUint16(0)
	words++
	if words%2 == 1 {
		b.AddUint16(0)
	}
	return nil
}

// SymbolEntry is a single name and value in a HUNK_SYMBOL block.
type SymbolEntry struct {
	Name  string
	Value uint32
}

// SymbolBlock lists the symbols of a segment.
type SymbolBlock struct {
	Symbols []SymbolEntry
}

func (s *SymbolBlock) ID() ID { return HUNK_SYMBOL }

func decodeSymbol(d *decoder, _ ID) (Block, error) {
	s := &SymbolBlock{}
	for {
		n, end, err := d.name()
		if err != nil {
			return nil, err
		}
		if end {
			break
		}
		v, err := d.long()
		if err != nil {
			return nil, err
		}
		s.Symbols = append(s.Symbols, SymbolEntry{Name: n, Value: v})
	}
	return s, nil
}

func encodeSymbol(b *cryptobyte.Builder, blk Block) error {
	s, ok := blk.(*SymbolBlock)
	if !ok {
		return wrongType(blk)
	}
	for _, e := range s.Symbols {
		if e.Name == "" {
			return faults.Mismatch("empty symbol name cannot be encoded")
		}
		addName(b, e.Name, 0)
		b.AddUint32(e.Value)
	}
	b.AddUint32(0)
	return nil
}

// ExtEntry is a single definition or reference in a HUNK_EXT block.
type ExtEntry struct {
	Name string
	Type ExtType

	// Value of a definition. Not used for references
	Value uint32

	// CommonSize is only used by EXT_ABSCOMMON, which has no offsets
	CommonSize uint32

	// Offsets of a reference. Not used for definitions or EXT_ABSCOMMON
	Offsets []uint32
}

// ExtBlock lists the external definitions and references of an object unit.
type ExtBlock struct {
	Entries []ExtEntry
}

func (e *ExtBlock) ID() ID { return HUNK_EXT }

func decodeExt(d *decoder, _ ID) (Block, error) {
	e := &ExtBlock{}
	for {
		tag, err := d.long()
		if err != nil {
			return nil, err
		}
		if tag == 0 {
			break
		}

		ent := ExtEntry{Type: ExtType(tag >> 24)}
		if ent.Name, err = d.nameUnits(tag & 0xffffff); err != nil {
			return nil, err
		}

		switch {
		case ent.Type == EXT_ABSCOMMON:
			if ent.CommonSize, err = d.long(); err != nil {
				return nil, err
			}
		case ent.Type.IsReference():
			num, err := d.long()
			if err != nil {
				return nil, err
			}
			if int64(num)*4 > int64(d.remaining()) {
				return nil, faults.ShortRead(d.offset(), int(num)*4, d.remaining())
			}
			ent.Offsets = make([]uint32, num)
			for i := range ent.Offsets {
				if ent.Offsets[i], err = d.long(); err != nil {
					return nil, err
				}
			}
		default:
			if ent.Value, err = d.long(); err != nil {
				return nil, err
			}
		}

		e.Entries = append(e.Entries, ent)
	}
	return e, nil
}

func encodeExt(b *cryptobyte.Builder, blk Block) error {
	e, ok := blk.(*ExtBlock)
	if !ok {
		return wrongType(blk)
	}
	for _, ent := range e.Entries {
		if ent.Name == "" && ent.Type == EXT_SYMB {
			return faults.Mismatch("empty %s name cannot be encoded", ent.Type)
		}
		addName(b, ent.Name, uint8(ent.Type))
		switch {
		case ent.Type == EXT_ABSCOMMON:
			b.AddUint32(ent.CommonSize)
		case ent.Type.IsReference():
			b.AddUint32(uint32(len(ent.Offsets)))
			for _, o := range ent.Offsets {
				b.AddUint32(o)
			}
		default:
			b.AddUint32(ent.Value)
		}
	}
	b.AddUint32(0)
	return nil
}

// DebugBlock holds debugging information. The content is not interpreted by
// the block codec.
type DebugBlock struct {
	Data []byte
}

func (g *DebugBlock) ID() ID { return HUNK_DEBUG }

func decodeDebug(d *decoder, _ ID) (Block, error) {
	n, err := d.long()
	if err != nil {
		return nil, err
	}
	data, err := d.bytes(int(n) * 4)
	if err != nil {
		return nil, err
	}
	return &DebugBlock{Data: data}, nil
}

func encodeDebug(b *cryptobyte.Builder, blk Block) error {
	g, ok := blk.(*DebugBlock)
	if !ok {
		return wrongType(blk)
	}
	addLongData(b, g.Data)
	return nil
}

// OverlayBlock holds the overlay table of an executable. The content is not
// interpreted.
type OverlayBlock struct {
	Data []byte
}

func (o *OverlayBlock) ID() ID { return HUNK_OVERLAY }

func decodeOverlay(d *decoder, _ ID) (Block, error) {
	n, err := d.long()
	if err != nil {
		return nil, err
	}
	data, err := d.bytes(int(n) * 4)
	if err != nil {
		return nil, err
	}
	return &OverlayBlock{Data: data}, nil
}

func encodeOverlay(b *cryptobyte.Builder, blk Block) error {
	o, ok := blk.(*OverlayBlock)
	if !ok {
		return wrongType(blk)
	}
	addLongData(b, o.Data)
	return nil
}

// EndBlock marks the end of a segment. It has no content.
type EndBlock struct{}

func (e *EndBlock) ID() ID { return HUNK_END }

// BreakBlock marks the end of an overlay node. It has no content.
type BreakBlock struct{}

func (e *BreakBlock) ID() ID { return HUNK_BREAK }

func decodeEmpty(_ *decoder, id ID) (Block, error) {
	if id == HUNK_BREAK {
		return &BreakBlock{}, nil
	}
	return &EndBlock{}, nil
}

func encodeEmpty(_ *cryptobyte.Builder, blk Block) error {
	switch blk.(type) {
	case *EndBlock, *BreakBlock:
		return nil
	}
	return wrongType(blk)
}

// UnitBlock begins an object unit.
type UnitBlock struct {
	Name string
}

func (u *UnitBlock) ID() ID { return HUNK_UNIT }

// NameBlock names the segment that follows it.
type NameBlock struct {
	Name string
}

func (n *NameBlock) ID() ID { return HUNK_NAME }

func decodeNamed(d *decoder, id ID) (Block, error) {
	n, _, err := d.name()
	if err != nil {
		return nil, err
	}
	if id == HUNK_UNIT {
		return &UnitBlock{Name: n}, nil
	}
	return &NameBlock{Name: n}, nil
}

func encodeNamed(b *cryptobyte.Builder, blk Block) error {
	switch n := blk.(type) {
	case *UnitBlock:
		addName(b, n.Name, 0)
	case *NameBlock:
		addName(b, n.Name, 0)
	default:
		return wrongType(blk)
	}
	return nil
}
