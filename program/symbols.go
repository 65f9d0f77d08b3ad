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

package program

import (
	"fmt"
	"path"
)

// Symbol is a named offset in a segment.
type Symbol struct {
	Name   string
	Offset uint32

	// optional
	FileName string
}

func (s Symbol) String() string {
	return fmt.Sprintf("%s=%#08x", s.Name, s.Offset)
}

// SymbolTable is the list of symbols in a segment, in the order they were
// added.
type SymbolTable struct {
	Symbols []Symbol
}

// Add a symbol to the table.
func (t *SymbolTable) Add(sym Symbol) {
	t.Symbols = append(t.Symbols, sym)
}

// Find returns the first symbol at the offset.
func (t *SymbolTable) Find(offset uint32) (Symbol, bool) {
	for _, s := range t.Symbols {
		if s.Offset == offset {
			return s, true
		}
	}
	return Symbol{}, false
}

// FindName returns the first symbol with the name.
func (t *SymbolTable) FindName(name string) (Symbol, bool) {
	for _, s := range t.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return Symbol{}, false
}

// DebugLineEntry maps an offset in a segment to a line in a source file.
type DebugLineEntry struct {
	Offset uint32

	// 24 bit line number
	SrcLine uint32

	Flags uint8
}

// NewDebugLineEntry creates an entry from the packed form used in files. The
// top eight bits of the packed value are the flags.
func NewDebugLineEntry(offset uint32, packed uint32) DebugLineEntry {
	return DebugLineEntry{
		Offset:  offset,
		SrcLine: packed & 0x00ffffff,
		Flags:   uint8(packed >> 24),
	}
}

// Packed returns the line number and flags in the packed form used in files.
func (e DebugLineEntry) Packed() uint32 {
	return e.SrcLine&0x00ffffff | uint32(e.Flags)<<24
}

func (e DebugLineEntry) String() string {
	if e.Flags != 0 {
		return fmt.Sprintf("%#08x: %d (flags %#02x)", e.Offset, e.SrcLine, e.Flags)
	}
	return fmt.Sprintf("%#08x: %d", e.Offset, e.SrcLine)
}

// DebugLineFile is the list of line entries for a single source file.
type DebugLineFile struct {
	SrcFile    string
	DirName    string
	BaseOffset uint32
	Entries    []DebugLineEntry
}

// NewDebugLineFile creates a DebugLineFile from a source path. The path is
// split into the directory and the file name at the last separator.
func NewDebugLineFile(srcPath string, baseOffset uint32) *DebugLineFile {
	dir, file := path.Split(srcPath)
	if dir != "" {
		dir = dir[:len(dir)-1]
	}
	return &DebugLineFile{
		SrcFile:    file,
		DirName:    dir,
		BaseOffset: baseOffset,
	}
}

// SrcPath returns the directory and file name joined by a separator. The
// reverse of NewDebugLineFile().
func (f *DebugLineFile) SrcPath() string {
	if f.DirName == "" {
		return f.SrcFile
	}
	return f.DirName + "/" + f.SrcFile
}

// Add an entry to the file.
func (f *DebugLineFile) Add(e DebugLineEntry) {
	f.Entries = append(f.Entries, e)
}

// DebugLine is the source line information for a segment.
type DebugLine struct {
	Files []*DebugLineFile
}

// Add a file to the line information.
func (d *DebugLine) Add(f *DebugLineFile) {
	d.Files = append(d.Files, f)
}

// Find returns the entry at the offset.
func (d *DebugLine) Find(offset uint32) (*DebugLineFile, DebugLineEntry, bool) {
	for _, f := range d.Files {
		for _, e := range f.Entries {
			if e.Offset == offset {
				return f, e, true
			}
		}
	}
	return nil, DebugLineEntry{}, false
}
