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
	"golang.org/x/crypto/cryptobyte"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/faults"
)

type decodeFunc func(d *decoder, id ID) (Block, error)
type encodeFunc func(b *cryptobyte.Builder, blk Block) error

type codec struct {
	decode decodeFunc
	encode encodeFunc
}

// codecs maps every supported block ID to its codec. Populated in init()
// because the HUNK_LIB codec reads blocks through the same table.
var codecs map[ID]codec

func register(dec decodeFunc, enc encodeFunc, ids ...ID) {
	for _, id := range ids {
		codecs[id] = codec{decode: dec, encode: enc}
	}
}

func init() {
	codecs = make(map[ID]codec)

	// executables
	register(decodeHeader, encodeHeader, HUNK_HEADER)
	register(decodeSegment, encodeSegment, HUNK_CODE, HUNK_DATA, HUNK_BSS)
	register(decodeRelocLong, encodeRelocLong, HUNK_ABSRELOC32)
	register(decodeRelocWord, encodeRelocWord, HUNK_RELOC32SHORT)
	register(decodeEmpty, encodeEmpty, HUNK_END)
	register(decodeDebug, encodeDebug, HUNK_DEBUG)
	register(decodeSymbol, encodeSymbol, HUNK_SYMBOL)

	// overlays
	register(decodeOverlay, encodeOverlay, HUNK_OVERLAY)
	register(decodeEmpty, encodeEmpty, HUNK_BREAK)

	// object units
	register(decodeNamed, encodeNamed, HUNK_UNIT, HUNK_NAME)
	register(decodeRelocLong, encodeRelocLong, HUNK_RELRELOC16, HUNK_RELRELOC8,
		HUNK_DREL32, HUNK_DREL16, HUNK_DREL8)
	register(decodeExt, encodeExt, HUNK_EXT)

	// libraries
	register(decodeLib, encodeLib, HUNK_LIB)
	register(decodeIndex, encodeIndex, HUNK_INDEX)
}

// Supported returns true if the block ID can be decoded and encoded.
func Supported(id ID) bool {
	_, ok := codecs[id]
	return ok
}

// DecodeBlock decodes the payload of a single block. The payload is the data
// that follows the block tag. Returns the block and the number of bytes of the
// payload that were consumed.
func DecodeBlock(id ID, payload []byte) (Block, int, error) {
	c, ok := codecs[id]
	if !ok {
		return nil, 0, faults.Unsupported(uint32(id))
	}
	d := newDecoder(payload, 0)
	blk, err := c.decode(d, id)
	if err != nil {
		return nil, 0, curated.Errorf("%v: %v", id, err)
	}
	return blk, d.offset(), nil
}

// EncodeBlock returns the payload of a single block. The block tag is not
// included.
func EncodeBlock(blk Block) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	if err := encodeBlock(b, blk); err != nil {
		return nil, err
	}
	return b.Bytes()
}

func encodeBlock(b *cryptobyte.Builder, blk Block) error {
	c, ok := codecs[blk.ID()]
	if !ok {
		return faults.Unsupported(uint32(blk.ID()))
	}
	if err := c.encode(b, blk); err != nil {
		return curated.Errorf("%v: %v", blk.ID(), err)
	}
	return nil
}

// wrongType is returned by an encode function if the block does not have the
// type expected for its ID.
func wrongType(blk Block) error {
	return faults.Mismatch("%T cannot be encoded as %v", blk, blk.ID())
}
