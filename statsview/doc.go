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

// Package statsview is an optional HTTP server offering runtime statistics
// of a running gohunk. It is only built when the statsview build constraint
// is present. Without the constraint Launch() returns the NotAvailable error.
//
// The statistics page is at /debug/statsview on the address given to
// Launch() and the standard Go pprof pages are under /debug/pprof/. Useful
// when profiling the relocation of very large files.
package statsview
