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

// Package digest is used to create hashes of the output of the relocator. The
// hash of relocated output can be compared between runs and between tools to
// check that a file is relocated consistently.
//
// Note that the use of sha1 is fine for this application because this is not a
// cryptographic task.
package digest

// Digest implementations compute a hash of data they have been given.
type Digest interface {
	Hash() string
	ResetDigest()
}
