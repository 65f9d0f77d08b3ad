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

package logger

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

// Colorizer applies basic coloring rules to logging output. The tag of each
// entry is highlighted.
type Colorizer struct {
	out io.Writer
	tag *color.Color
}

// NewColorizer is the preferred method if initialisation for the Colorizer type.
func NewColorizer(out io.Writer) Colorizer {
	return Colorizer{
		out: out,
		tag: color.New(color.FgCyan),
	}
}

// Write implements the io.Writer interface.
func (c Colorizer) Write(p []byte) (n int, err error) {
	for _, s := range strings.SplitAfter(string(p), "\n") {
		if s == "" {
			continue
		}

		tag, detail, ok := strings.Cut(s, ": ")
		if ok {
			_, err = c.out.Write([]byte(c.tag.Sprint(tag) + ": " + detail))
		} else {
			_, err = c.out.Write([]byte(s))
		}
		if err != nil {
			return n, err
		}

		// the number of bytes of p consumed, not the number of bytes written
		// including the color escape codes
		n += len(s)
	}

	return n, nil
}
