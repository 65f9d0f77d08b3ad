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

// Package hunkfmt converts between executables in the hunk format and the
// program package. Load() and Save() work with streams, ToImage() and
// FromImage() work with the assembled form from the hunk package.
//
// Relocation blocks for the same target segment are merged when loading.
// When saving there is one relocation block per segment with one group for
// each target segment.
//
// LINE debug blocks become the source line information of a segment. Other
// debug blocks are decoded by DecodeDebug() but are not part of the program
// image.
package hunkfmt
