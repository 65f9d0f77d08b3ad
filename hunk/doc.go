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

// Package hunk reads and writes the blocks of the Amiga hunk file format.
// Executables, object units and libraries are all sequences of tagged blocks.
//
// Read() returns every block in a file and Write() is the reverse. The kind of
// file is decided by the first block and can be found with PeekType() before
// reading or with DetectType() afterwards.
//
// Executables are assembled into segments with ParseLoadSegFile(). Each
// LoadSegment holds the segment block and the relocation, symbol and debug
// blocks that follow it. LoadSegFile.Blocks() is the reverse.
//
// Errors are curated errors and can be tested for the categories in the
// faults package.
package hunk
