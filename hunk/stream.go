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
	"encoding/binary"
	"io"

	"golang.org/x/crypto/cryptobyte"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/faults"
	"github.com/jetsetilly/gohunk/logger"
)

// LibBlock is a library container. It holds a nested sequence of blocks.
type LibBlock struct {
	Blocks []Block

	// the position of the tag of each block in the stream it was read from
	Offsets []int
}

func (l *LibBlock) ID() ID { return HUNK_LIB }

func decodeLib(d *decoder, _ ID) (Block, error) {
	n, err := d.long()
	if err != nil {
		return nil, err
	}
	sub, err := d.sub(int(n) * 4)
	if err != nil {
		return nil, err
	}

	l := &LibBlock{}
	l.Blocks, l.Offsets, err = readBlocks(sub, false)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func encodeLib(b *cryptobyte.Builder, blk Block) error {
	l, ok := blk.(*LibBlock)
	if !ok {
		return wrongType(blk)
	}

	inner := cryptobyte.NewBuilder(nil)
	if err := writeBlocks(inner, l.Blocks, false); err != nil {
		return err
	}
	data, err := inner.Bytes()
	if err != nil {
		return faults.Malformed("%v", err)
	}
	if len(data)%4 != 0 {
		return faults.Mismatch("library members are not a multiple of four bytes")
	}

	b.AddUint32(uint32(len(data) / 4))
	b.AddBytes(data)
	return nil
}

// readBlocks reads tagged blocks until the decoder is empty. Returns the
// blocks and the offset of the tag of each block.
func readBlocks(d *decoder, loadSeg bool) ([]Block, []int, error) {
	var blocks []Block
	var offsets []int

	for !d.empty() {
		offset := d.offset()
		if d.remaining() < 4 {
			return nil, nil, faults.Malformed("block tag at offset %#x is too short", offset)
		}

		tag, _ := d.long()
		id := ID(tag & TypeMask)

		c, ok := codecs[id]
		if !ok {
			return nil, nil, faults.Unsupported(uint32(id))
		}

		// executables use HUNK_RELOC32SHORT in place of HUNK_DREL32
		if loadSeg && id == HUNK_DREL32 {
			logger.Logf(logger.Allow, "hunk", "reading %v as %v at offset %#x", HUNK_DREL32, HUNK_RELOC32SHORT, offset)
			id = HUNK_RELOC32SHORT
			c = codecs[id]
		}

		blk, err := c.decode(d, id)
		if err != nil {
			return nil, nil, curated.Errorf("%v at offset %#x: %v", id, offset, err)
		}

		blocks = append(blocks, blk)
		offsets = append(offsets, offset)
	}

	return blocks, offsets, nil
}

// writeBlocks is the reverse of readBlocks.
func writeBlocks(b *cryptobyte.Builder, blocks []Block, loadSeg bool) error {
	for _, blk := range blocks {
		id := blk.ID()
		if loadSeg && id == HUNK_RELOC32SHORT {
			id = HUNK_DREL32
		}
		b.AddUint32(uint32(id))
		if err := encodeBlock(b, blk); err != nil {
			return err
		}
	}
	return nil
}

// Read all blocks from the reader. The loadSeg argument should be true if the
// data is known to be an executable. See DetectType() or PeekType() for
// deciding if that is the case.
func Read(r io.Reader, loadSeg bool) ([]Block, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, curated.Errorf("hunk: %v", err)
	}
	return ReadBytes(data, loadSeg)
}

// ReadBytes is the same as Read() but for data that is already in memory.
func ReadBytes(data []byte, loadSeg bool) ([]Block, error) {
	blocks, _, err := readBlocks(newDecoder(data, 0), loadSeg)
	if err != nil {
		return nil, curated.Errorf("hunk: %v", err)
	}
	logger.Logf(logger.Allow, "hunk", "read %d blocks (%d bytes)", len(blocks), len(data))
	return blocks, nil
}

// Write the blocks to the writer in order. The loadSeg argument should be true
// if the blocks form an executable.
func Write(w io.Writer, blocks []Block, loadSeg bool) error {
	data, err := WriteBytes(blocks, loadSeg)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return curated.Errorf("hunk: %v", err)
	}
	return nil
}

// WriteBytes is the same as Write() but returns the encoded data.
func WriteBytes(blocks []Block, loadSeg bool) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	if err := writeBlocks(b, blocks, loadSeg); err != nil {
		return nil, curated.Errorf("hunk: %v", err)
	}
	data, err := b.Bytes()
	if err != nil {
		return nil, curated.Errorf("hunk: %v", faults.Malformed("%v", err))
	}
	logger.Logf(logger.Allow, "hunk", "wrote %d blocks (%d bytes)", len(blocks), len(data))
	return data, nil
}

// PeekType reads the first tag from the stream and returns the type of file.
// The position of the stream is restored before returning. A stream with fewer
// than four bytes is TypeUnknown.
func PeekType(r io.ReadSeeker) (FileType, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return TypeUnknown, curated.Errorf("hunk: %v", err)
	}

	var tag [4]byte
	_, readErr := io.ReadFull(r, tag[:])

	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return TypeUnknown, curated.Errorf("hunk: %v", err)
	}

	if readErr != nil {
		return TypeUnknown, nil
	}

	return fileTypeFromID(ID(binary.BigEndian.Uint32(tag[:]) & TypeMask)), nil
}

// DetectType returns the type of file from a list of blocks. The type is
// decided by the first block.
func DetectType(blocks []Block) FileType {
	if len(blocks) == 0 {
		return TypeUnknown
	}
	return fileTypeFromID(blocks[0].ID())
}

// BlockNames returns the name of every block in the list.
func BlockNames(blocks []Block) []string {
	n := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		n = append(n, blk.ID().String())
	}
	return n
}
