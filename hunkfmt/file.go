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

package hunkfmt

import (
	"bytes"
	"io"

	"github.com/jetsetilly/gohunk/curated"
	"github.com/jetsetilly/gohunk/hunk"
	"github.com/jetsetilly/gohunk/program"
)

// IsImage returns true if the stream begins with an executable. The position
// of the stream is not changed.
func IsImage(r io.ReadSeeker) (bool, error) {
	t, err := hunk.PeekType(r)
	if err != nil {
		return false, curated.Errorf("hunkfmt: %v", err)
	}
	return t == hunk.TypeLoadSeg, nil
}

// Load reads an executable and returns it as a program image.
func Load(r io.Reader) (*program.Image, error) {
	blocks, err := hunk.Read(r, true)
	if err != nil {
		return nil, curated.Errorf("hunkfmt: %v", err)
	}
	lsf, err := hunk.ParseLoadSegFile(blocks)
	if err != nil {
		return nil, curated.Errorf("hunkfmt: %v", err)
	}
	return ToImage(lsf)
}

// LoadBytes is the same as Load() but for data that is already in memory.
func LoadBytes(data []byte) (*program.Image, error) {
	return Load(bytes.NewReader(data))
}

// Save writes the program image as an executable.
func Save(w io.Writer, img *program.Image, forceLong bool) error {
	lsf, err := FromImage(img, forceLong)
	if err != nil {
		return err
	}
	blocks, err := lsf.Blocks()
	if err != nil {
		return curated.Errorf("hunkfmt: %v", err)
	}
	if err := hunk.Write(w, blocks, true); err != nil {
		return curated.Errorf("hunkfmt: %v", err)
	}
	return nil
}
