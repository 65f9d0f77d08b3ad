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

// Package loader is used to specify the hunk file that is to be worked on.
//
// The Load() function handles loading of data from different sources.
// Currently local files, files inside zip archives and data over HTTP are
// supported.
//
// The simplest instance of the Loader type:
//
//	ld := loader.Loader{
//		Filename: "c/list",
//	}
//
// It is preferred however that the NewLoader() function is used.
package loader
