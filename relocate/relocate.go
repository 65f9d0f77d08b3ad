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

package relocate

import (
	"encoding/binary"
	"fmt"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/faults"
	"github.com/jetsetilly/gohunk/logger"
	"github.com/jetsetilly/gohunk/program"
)

// Layout returns the address of each segment when they are placed one after
// the other, starting at base and with padding bytes between each segment.
func Layout(sizes []uint32, base uint32, padding uint32) []uint32 {
	addrs := make([]uint32, len(sizes))
	addr := base
	for i, sz := range sizes {
		addrs[i] = addr
		addr += sz + padding
	}
	return addrs
}

// Relocator patches the segments of a program image. The image is not
// changed.
type Relocator struct {
	img *program.Image
}

// New creates a Relocator for the program image.
func New(img *program.Image) *Relocator {
	return &Relocator{img: img}
}

// Sizes returns the declared size in bytes of every segment.
func (r *Relocator) Sizes() []uint32 {
	sizes := make([]uint32, len(r.img.Segments))
	for i, s := range r.img.Segments {
		sizes[i] = s.Size
	}
	return sizes
}

// TotalSize returns the number of bytes required to hold every segment with
// padding bytes after each one.
func (r *Relocator) TotalSize(padding uint32) uint32 {
	var total uint32
	for _, sz := range r.Sizes() {
		total += sz + padding
	}
	return total
}

// SeqAddrs is the same as Layout() for the segments of the image.
func (r *Relocator) SeqAddrs(base uint32, padding uint32) []uint32 {
	addrs := Layout(r.Sizes(), base, padding)
	for i, a := range addrs {
		logger.Logf(logger.Allow, "relocate", "%s at %#08x", r.img.Segments[i].Name(), a)
	}
	return addrs
}

// Relocate returns a copy of every segment patched for the addresses. There
// must be one address for every segment. BSS segments are returned as zeroed
// buffers of the declared size.
func (r *Relocator) Relocate(addrs []uint32) ([][]byte, error) {
	if len(addrs) != len(r.img.Segments) {
		return nil, curated.Errorf("relocate: %v", faults.Mismatch("%d addresses for %d segments", len(addrs), len(r.img.Segments)))
	}

	datas := make([][]byte, len(r.img.Segments))
	for i, s := range r.img.Segments {
		data := make([]byte, s.Size)
		if err := r.copyData(data, s); err != nil {
			return nil, curated.Errorf("relocate: %v", err)
		}
		if err := r.patch(data, s, addrs); err != nil {
			return nil, curated.Errorf("relocate: %v", err)
		}
		datas[i] = data
	}

	return datas, nil
}

// RelocateOneBlock places every segment in a single buffer, with padding bytes
// after each segment, and patches them for loading at the base address.
func (r *Relocator) RelocateOneBlock(base uint32, padding uint32) ([]byte, error) {
	addrs := r.SeqAddrs(base, padding)
	data := make([]byte, r.TotalSize(padding))

	var offset uint32
	for _, s := range r.img.Segments {
		seg := data[offset : offset+s.Size]
		if err := r.copyData(seg, s); err != nil {
			return nil, curated.Errorf("relocate: %v", err)
		}
		if err := r.patch(seg, s, addrs); err != nil {
			return nil, curated.Errorf("relocate: %v", err)
		}
		offset += s.Size + padding
	}

	logger.Logf(logger.Allow, "relocate", "%d segments in one block of %d bytes at %#08x", len(r.img.Segments), len(data), base)

	return data, nil
}

func (r *Relocator) copyData(data []byte, s *program.Segment) error {
	if len(s.Data) > len(data) {
		return faults.Mismatch("%s has %d bytes of data for a size of %d", s.Name(), len(s.Data), len(data))
	}
	copy(data, s.Data)
	return nil
}

// patch the relocations in data, which is the content of segment s.
func (r *Relocator) patch(data []byte, s *program.Segment, addrs []uint32) error {
	for _, to := range s.RelocTargets() {
		if to < 0 || to >= len(addrs) {
			return faults.Mismatch("%s relocates against missing segment %d", s.Name(), to)
		}
		toAddr := int32(addrs[to])

		for _, e := range s.Relocations(to).Entries {
			if err := checkField(data, s, e); err != nil {
				return err
			}
			delta := int32(binary.BigEndian.Uint32(data[e.Offset:])) + e.Addend
			binary.BigEndian.PutUint32(data[e.Offset:], uint32(toAddr+delta))
		}
	}
	return nil
}

func checkField(data []byte, s *program.Segment, e program.Reloc) error {
	if e.Width != program.LongWidth {
		return faults.Mismatch("%s relocation at %v has unsupported width %d", s.Name(), e, e.Width)
	}
	if uint64(e.Offset)+program.LongWidth > uint64(len(data)) {
		return faults.Mismatch("%s relocation at %v is outside of segment (size %d)", s.Name(), e, len(data))
	}
	return nil
}

// Fixup is a relocated field. Source is the address of the field and Target is
// the value written to it.
type Fixup struct {
	Segment int
	To      int
	Offset  uint32
	Source  uint32
	Target  uint32
}

func (f Fixup) String() string {
	return fmt.Sprintf("%#08x -> %#08x (#%d+%#x -> #%d)", f.Source, f.Target, f.Segment, f.Offset, f.To)
}

// Fixups lists every relocated field of the image. The addresses and data
// should be those used with and returned by Relocate().
func (r *Relocator) Fixups(addrs []uint32, datas [][]byte) ([]Fixup, error) {
	if len(addrs) != len(r.img.Segments) || len(datas) != len(r.img.Segments) {
		return nil, curated.Errorf("relocate: %v", faults.Mismatch("%d addresses and %d buffers for %d segments",
			len(addrs), len(datas), len(r.img.Segments)))
	}

	var fixups []Fixup
	for i, s := range r.img.Segments {
		for _, to := range s.RelocTargets() {
			for _, e := range s.Relocations(to).Entries {
				if err := checkField(datas[i], s, e); err != nil {
					return nil, curated.Errorf("relocate: %v", err)
				}
				fixups = append(fixups, Fixup{
					Segment: i,
					To:      to,
					Offset:  e.Offset,
					Source:  addrs[i] + e.Offset,
					Target:  binary.BigEndian.Uint32(datas[i][e.Offset:]),
				})
			}
		}
	}

	return fixups, nil
}
