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

package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/jetsetilly/gohunk/curated"
)

// Relocated generates a sha1 value of relocated segments. Each segment is
// chained to the hash of the previous segment so the order of the segments
// affects the result.
type Relocated struct {
	digest   [sha1.Size]byte
	buf      []byte
	segments int
}

// NewRelocated initialises a new instance of Relocated.
func NewRelocated() *Relocated {
	return &Relocated{}
}

func (dig Relocated) String() string {
	return fmt.Sprintf("%x", dig.digest)
}

// Hash implements digest.Digest interface.
func (dig Relocated) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// Segments returns the number of segments added since the last reset.
func (dig Relocated) Segments() int {
	return dig.segments
}

// ResetDigest implements digest.Digest interface.
func (dig *Relocated) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
	dig.segments = 0
}

// AddSegment adds the data of one relocated segment to the digest.
func (dig *Relocated) AddSegment(data []byte) error {
	// chain fingerprints by copying the value of the last fingerprint
	// to the head of the segment data
	dig.buf = append(dig.buf[:0], dig.digest[:]...)
	if len(dig.buf) != len(dig.digest) {
		return curated.Errorf("digest: %v", "chaining error during add segment")
	}
	dig.buf = append(dig.buf, data...)
	dig.digest = sha1.Sum(dig.buf)
	dig.segments++
	return nil
}

// AddSegments calls AddSegment() for every entry.
func (dig *Relocated) AddSegments(datas [][]byte) error {
	for _, d := range datas {
		if err := dig.AddSegment(d); err != nil {
			return err
		}
	}
	return nil
}
