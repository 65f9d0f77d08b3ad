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
	"strings"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/faults"
)

// Image is a program made up of an ordered list of segments.
type Image struct {
	Segments []*Segment

	// the container the image was created from. nil if the image was not
	// loaded from a file
	Source any
}

// AddSegment appends the segment to the image and assigns its ID.
func (img *Image) AddSegment(s *Segment) {
	s.ID = len(img.Segments)
	img.Segments = append(img.Segments, s)
}

// Size returns the sum of the size of every segment.
func (img *Image) Size() uint32 {
	var n uint32
	for _, s := range img.Segments {
		n += s.Size
	}
	return n
}

// SegmentNames returns the name of every segment in order.
func (img *Image) SegmentNames() []string {
	n := make([]string, len(img.Segments))
	for i, s := range img.Segments {
		n[i] = s.Name()
	}
	return n
}

// Validate checks that every segment ID matches its position, that every
// relocation refers to a segment in the image and that every relocated field
// is inside its segment.
func (img *Image) Validate() error {
	for i, s := range img.Segments {
		if s.ID != i {
			return curated.Errorf("program: %v", faults.Mismatch("segment at position %d has ID %d", i, s.ID))
		}
		if s.Type == BSS && s.Data != nil {
			return curated.Errorf("program: %v", faults.Mismatch("BSS segment %d has data", i))
		}
		if uint64(len(s.Data)) > uint64(s.Size) {
			return curated.Errorf("program: %v", faults.Mismatch("segment %d has %d bytes of data but a size of %d", i, len(s.Data), s.Size))
		}
		for _, to := range s.RelocTargets() {
			if to < 0 || to >= len(img.Segments) {
				return curated.Errorf("program: %v", faults.Mismatch("segment %d relocates against missing segment %d", i, to))
			}
			for _, r := range s.relocs[to].Entries {
				if r.Width != LongWidth {
					return curated.Errorf("program: %v", faults.Mismatch("segment %d has relocation of unsupported width %d", i, r.Width))
				}
				if uint64(r.Offset)+uint64(r.Width) > uint64(s.Size) {
					return curated.Errorf("program: %v", faults.Mismatch("segment %d has relocation at %#x outside of segment", i, r.Offset))
				}
			}
		}
	}
	return nil
}

func (img *Image) String() string {
	b := strings.Builder{}
	for i, s := range img.Segments {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.String())
	}
	return b.String()
}
