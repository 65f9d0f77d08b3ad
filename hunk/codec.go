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

	"golang.org/x/crypto/cryptobyte"

	"github.com/jetsetilly/gohunk/faults"
)

// decoder reads big-endian fields from a region of a hunk file. The region
// may be a sub-region of the file, as is the case for library members, so the
// decoder remembers where the region ends in the origin stream.
type decoder struct {
	s   cryptobyte.String
	end int
}

func newDecoder(data []byte, origin int) *decoder {
	return &decoder{
		s:   cryptobyte.String(data),
		end: origin + len(data),
	}
}

// offset returns the position of the next unread byte in the origin stream.
func (d *decoder) offset() int {
	return d.end - len(d.s)
}

func (d *decoder) empty() bool {
	return d.s.Empty()
}

func (d *decoder) remaining() int {
	return len(d.s)
}

func (d *decoder) long() (uint32, error) {
	var v uint32
	if !d.s.ReadUint32(&v) {
		return 0, faults.ShortRead(d.offset(), 4, len(d.s))
	}
	return v, nil
}

func (d *decoder) word() (uint16, error) {
	var v uint16
	if !d.s.ReadUint16(&v) {
		return 0, faults.ShortRead(d.offset(), 2, len(d.s))
	}
	return v, nil
}

// bytes returns a copy of the next n bytes.
func (d *decoder) bytes(n int) ([]byte, error) {
	if n < 0 || n > len(d.s) {
		return nil, faults.ShortRead(d.offset(), n, len(d.s))
	}
	var b []byte
	d.s.ReadBytes(&b, n)
	c := make([]byte, n)
	copy(c, b)
	return c, nil
}

// sub returns a decoder for the next n bytes. The bytes are consumed from the
// parent decoder.
func (d *decoder) sub(n int) (*decoder, error) {
	origin := d.offset()
	if n < 0 || n > len(d.s) {
		return nil, faults.ShortRead(origin, n, len(d.s))
	}
	var b []byte
	d.s.ReadBytes(&b, n)
	return newDecoder(b, origin), nil
}

// name reads a name field. A name is a longword count of 4-byte units followed
// by the units. A count of zero means that there are no more names in a list,
// in which case end is true.
func (d *decoder) name() (name string, end bool, err error) {
	n, err := d.long()
	if err != nil {
		return "", false, err
	}
	if n == 0 {
		return "", true, nil
	}
	name, err = d.nameUnits(n & 0xffffff)
	return name, false, err
}

// nameUnits reads a name of a known number of 4-byte units. The name ends at
// the first null byte.
func (d *decoder) nameUnits(units uint32) (string, error) {
	b, err := d.bytes(int(units) * 4)
	if err != nil {
		return "", err
	}
	return trimName(b), nil
}

// trimName returns the part of the name field before the first null byte.
func trimName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// nameLongs returns the number of 4-byte units required to store the name.
func nameLongs(s string) uint32 {
	return uint32((len(s) + 3) / 4)
}

// addName writes a name field. The tag is stored in the top byte of the count
// and is only used by HUNK_EXT entries. The name is padded with null bytes to
// a multiple of four bytes.
func addName(b *cryptobyte.Builder, s string, tag uint8) {
	n := nameLongs(s)
	b.AddUint32(n | uint32(tag)<<24)
	b.AddBytes(padLong([]byte(s)))
}

// padLong returns the data extended with null bytes to a multiple of four
// bytes. The original slice is returned if no padding is needed.
func padLong(data []byte) []byte {
	if len(data)%4 == 0 {
		return data
	}
	p := make([]byte, (len(data)+3)&^3)
	copy(p, data)
	return p
}

// addLongData writes a longword count of 4-byte units followed by the padded
// data.
func addLongData(b *cryptobyte.Builder, data []byte) {
	p := padLong(data)
	b.AddUint32(uint32(len(p) / 4))
	b.AddBytes(p)
}
