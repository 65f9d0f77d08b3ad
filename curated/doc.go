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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The Is() function can be used to check whether an error was created with a
// specific pattern. The pattern is what differentiates one curated error from
// another. For example:
//
//	e := curated.Errorf("short read: needed %d bytes", 4)
//
//	if curated.Is(e, "short read: needed %d bytes") {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain.
//
//	e := curated.Errorf("short read: needed %d bytes", 4)
//	f := curated.Errorf("hunk: %v", e)
//
//	if curated.Has(f, "short read: needed %d bytes") {
//		fmt.Println("true")
//	}
//
// Patterns that are used to identify a category of error should be stored as
// a const string, suitably named and commented. The faults package does this
// for the three categories of error produced by the hunk packages.
//
// The Error() function implementation for curated errors ensures that the
// error chain is normalised. Specifically, that the chain does not contain
// duplicate adjacent parts. For example, wrapping an error as follows:
//
//	e := curated.Errorf("hunk: %v", curated.Errorf("hunk: unknown block"))
//
// results in the message:
//
//	hunk: unknown block
//
// and not:
//
//	hunk: hunk: unknown block
//
// For the purposes of this package we think of chains as being composed of
// parts separated by the sub-string ': '.
//
// Curated errors also implement the Unwrap() []error method, returning any
// placeholder values that are themselves errors. This means the standard
// library errors.Is() and errors.As() functions see through a curated chain.
package curated
