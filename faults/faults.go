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

// Package faults defines the categories of error that can be produced when
// reading, writing or relocating a hunk file. Every category is fatal to the
// operation that produced it.
//
// The categories are curated error patterns. Errors are created with the
// functions in this package and tested with curated.Has():
//
//	if curated.Has(err, faults.UnsupportedTag) {
//		...
//	}
package faults

import (
	"fmt"

	"github.com/jetsetilly/gohunk/curated"
)

// MalformedStream is the pattern for errors caused by data that cannot be
// decoded. For example, a short read or a truncated field.
const MalformedStream = "malformed stream: %v"

// UnsupportedTag is the pattern for a block type that is not recognised. The
// placeholder is the block type number.
const UnsupportedTag = "unsupported block type: %04d"

// StructuralMismatch is the pattern for data that decodes correctly but which
// is inconsistent with itself. For example, the number of segments in an
// executable not agreeing with the header.
const StructuralMismatch = "structural mismatch: %v"

// Malformed creates a MalformedStream error.
func Malformed(detail string, args ...interface{}) error {
	return curated.Errorf(MalformedStream, fmt.Sprintf(detail, args...))
}

// ShortRead creates a MalformedStream error for the case where fewer bytes
// are available than are required.
func ShortRead(offset int, needed int, available int) error {
	return Malformed("short read at offset %#x: needed %d bytes, %d available", offset, needed, available)
}

// Unsupported creates an UnsupportedTag error.
func Unsupported(id uint32) error {
	return curated.Errorf(UnsupportedTag, id)
}

// Mismatch creates a StructuralMismatch error.
func Mismatch(detail string, args ...interface{}) error {
	return curated.Errorf(StructuralMismatch, fmt.Sprintf(detail, args...))
}

// Category returns the pattern of the fault category found in the error
// chain. Returns the empty string if the error is not a fault.
func Category(err error) string {
	for _, p := range []string{MalformedStream, UnsupportedTag, StructuralMismatch} {
		if curated.Has(err, p) {
			return p
		}
	}
	return ""
}
