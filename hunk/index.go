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
	"bytes"
	"math"

	"golang.org/x/crypto/cryptobyte"

	"github.com/jetsetilly/gohunk/faults"
)

// IndexDef is a symbol defined by a hunk in a library index.
type IndexDef struct {
	NameOffset uint16
	Value      uint16
	SymCType   uint16
}

// IndexHunk describes a single hunk of a unit in a library index.
type IndexHunk struct {
	NameOffset uint16
	HunkLongs  uint16
	HunkCType  uint16

	// name offsets of the referenced symbols
	Refs []uint16
	Defs []IndexDef
}

// IndexUnit describes a unit in a library index.
type IndexUnit struct {
	NameOffset          uint16
	FirstHunkLongOffset uint16
	Hunks               []IndexHunk
}

// IndexBlock is the fast-load index of a library. Every name is an offset
// into the string table.
type IndexBlock struct {
	StringTable []byte
	Units       []IndexUnit
}

func (x *IndexBlock) ID() ID { return HUNK_INDEX }

// Name returns the null terminated string at the offset in the string table.
// Returns the empty string if the offset is outside of the table.
func (x *IndexBlock) Name(offset uint16) string {
	if int(offset) >= len(x.StringTable) {
		return ""
	}
	s := x.StringTable[offset:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}

// words returns the number of words used by the string table and the unit
// records, not including any alignment word.
func (x *IndexBlock) words() int {
	n := len(x.StringTable)/2 + 1
	for _, u := range x.Units {
		n += 3
		for _, h := range u.Hunks {
			n += 5 + len(h.Refs) + 3*len(h.Defs)
		}
	}
	return n
}

func decodeIndex(d *decoder, _ ID) (Block, error) {
	x := &IndexBlock{}

	numLongs, err := d.long()
	if err != nil {
		return nil, err
	}
	numWords := int64(numLongs) * 2

	strtabSize, err := d.word()
	if err != nil {
		return nil, err
	}
	if x.StringTable, err = d.bytes(int(strtabSize)); err != nil {
		return nil, err
	}
	numWords -= int64(strtabSize)/2 + 1

	// the word budget is an approximation if the string table has an odd
	// length. this is the same as other readers of the format
	for numWords > 1 {
		var u IndexUnit
		if u.NameOffset, err = d.word(); err != nil {
			return nil, err
		}
		if u.FirstHunkLongOffset, err = d.word(); err != nil {
			return nil, err
		}
		numHunks, err := d.word()
		if err != nil {
			return nil, err
		}
		numWords -= 3

		for i := 0; i < int(numHunks); i++ {
			var h IndexHunk
			if h.NameOffset, err = d.word(); err != nil {
				return nil, err
			}
			if h.HunkLongs, err = d.word(); err != nil {
				return nil, err
			}
			if h.HunkCType, err = d.word(); err != nil {
				return nil, err
			}

			numRefs, err := d.word()
			if err != nil {
				return nil, err
			}
			for j := 0; j < int(numRefs); j++ {
				r, err := d.word()
				if err != nil {
					return nil, err
				}
				h.Refs = append(h.Refs, r)
			}

			numDefs, err := d.word()
			if err != nil {
				return nil, err
			}
			for j := 0; j < int(numDefs); j++ {
				var def IndexDef
				if def.NameOffset, err = d.word(); err != nil {
					return nil, err
				}
				if def.Value, err = d.word(); err != nil {
					return nil, err
				}
				if def.SymCType, err = d.word(); err != nil {
					return nil, err
				}
				h.Defs = append(h.Defs, def)
			}

			numWords -= 5 + int64(numRefs) + 3*int64(numDefs)
			u.Hunks = append(u.Hunks, h)
		}

		x.Units = append(x.Units, u)
	}

	// alignment word. the value is ignored
	if numWords == 1 {
		if _, err := d.word(); err != nil {
			return nil, err
		}
	}

	return x, nil
}

func encodeIndex(b *cryptobyte.Builder, blk Block) error {
	x, ok := blk.(*IndexBlock)
	if !ok {
		return wrongType(blk)
	}

	if len(x.StringTable) > math.MaxUint16 {
		return faults.Mismatch("index string table is too long (%d bytes)", len(x.StringTable))
	}

	numWords := x.words()
	pad := numWords%2 == 1
	if pad {
		numWords++
	}

	b.AddUint32(uint32(numWords / 2))
	b.AddUint16(uint16(len(x.StringTable)))
	b.AddBytes(x.StringTable)

	for _, u := range x.Units {
		if len(u.Hunks) > math.MaxUint16 {
			return faults.Mismatch("too many hunks in index unit")
		}
		b.AddUint16(u.NameOffset)
		b.AddUint16(u.FirstHunkLongOffset)
		b.AddUint16(uint16(len(u.Hunks)))
		for _, h := range u.Hunks {
			if len(h.Refs) > math.MaxUint16 || len(h.Defs) > math.MaxUint16 {
				return faults.Mismatch("too many symbols in index hunk")
			}
			b.AddUint16(h.NameOffset)
			b.AddUint16(h.HunkLongs)
			b.AddUint16(h.HunkCType)
			b.AddUint16(uint16(len(h.Refs)))
			for _, r := range h.Refs {
				b.AddUint16(r)
			}
			b.AddUint16(uint16(len(h.Defs)))
			for _, def := range h.Defs {
				b.AddUint16(def.NameOffset)
				b.AddUint16(def.Value)
				b.AddUint16(def.SymCType)
			}
		}
	}

	if pad {
		b.AddUint16(0)
	}

	return nil
}
