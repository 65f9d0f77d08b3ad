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

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// hexValue is a pflag.Value for addresses. Values can be written in decimal or
// in hex with either the 0x or $ prefix.
type hexValue uint32

var _ pflag.Value = (*hexValue)(nil)

func (h *hexValue) String() string {
	return fmt.Sprintf("%#08x", uint32(*h))
}

func (h *hexValue) Set(s string) error {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return fmt.Errorf("not a valid address: %s", s)
	}
	*h = hexValue(v)
	return nil
}

func (h *hexValue) Type() string {
	return "address"
}
