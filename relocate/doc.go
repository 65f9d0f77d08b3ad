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

// Package relocate patches the segments of a program image for loading at
// specific addresses.
//
// Relocated fields are 32 bit big-endian values. The value stored in the
// segment is treated as a signed offset into the target segment, to which the
// addend of the relocation and the address of the target segment are added.
// Arithmetic wraps at 32 bits.
//
// Segments can be relocated to individual addresses with Relocate() or into a
// single contiguous buffer with RelocateOneBlock().
package relocate
