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

package hunk

import (
	"fmt"
	"sort"
)

// ID is the type tag of a block. Only the low 16 bits of a tag in a hunk file
// select the type. The high bits are memory attribute hints and are removed
// with TypeMask before the ID is used.
type ID uint32

// TypeMask is applied to a raw block tag to give the ID.
const TypeMask = 0xffff

// List of block types. The names are the same as those used in the AmigaDOS
// documentation.
const (
	HUNK_UNIT         ID = 999
	HUNK_NAME         ID = 1000
	HUNK_CODE         ID = 1001
	HUNK_DATA         ID = 1002
	HUNK_BSS          ID = 1003
	HUNK_ABSRELOC32   ID = 1004
	HUNK_RELRELOC16   ID = 1005
	HUNK_RELRELOC8    ID = 1006
	HUNK_EXT          ID = 1007
	HUNK_SYMBOL       ID = 1008
	HUNK_DEBUG        ID = 1009
	HUNK_END          ID = 1010
	HUNK_HEADER       ID = 1011
	HUNK_OVERLAY      ID = 1013
	HUNK_BREAK        ID = 1014
	HUNK_DREL32       ID = 1015
	HUNK_DREL16       ID = 1016
	HUNK_DREL8        ID = 1017
	HUNK_LIB          ID = 1018
	HUNK_INDEX        ID = 1019
	HUNK_RELOC32SHORT ID = 1020
	HUNK_RELRELOC32   ID = 1021
	HUNK_ABSRELOC16   ID = 1022
	HUNK_PPC_CODE     ID = 1257
	HUNK_RELRELOC26   ID = 1260
)

var idNames = map[ID]string{
	HUNK_UNIT:         "HUNK_UNIT",
	HUNK_NAME:         "HUNK_NAME",
	HUNK_CODE:         "HUNK_CODE",
	HUNK_DATA:         "HUNK_DATA",
	HUNK_BSS:          "HUNK_BSS",
	HUNK_ABSRELOC32:   "HUNK_ABSRELOC32",
	HUNK_RELRELOC16:   "HUNK_RELRELOC16",
	HUNK_RELRELOC8:    "HUNK_RELRELOC8",
	HUNK_EXT:          "HUNK_EXT",
	HUNK_SYMBOL:       "HUNK_SYMBOL",
	HUNK_DEBUG:        "HUNK_DEBUG",
	HUNK_END:          "HUNK_END",
	HUNK_HEADER:       "HUNK_HEADER",
	HUNK_OVERLAY:      "HUNK_OVERLAY",
	HUNK_BREAK:        "HUNK_BREAK",
	HUNK_DREL32:       "HUNK_DREL32",
	HUNK_DREL16:       "HUNK_DREL16",
	HUNK_DREL8:        "HUNK_DREL8",
	HUNK_LIB:          "HUNK_LIB",
	HUNK_INDEX:        "HUNK_INDEX",
	HUNK_RELOC32SHORT: "HUNK_RELOC32SHORT",
	HUNK_RELRELOC32:   "HUNK_RELRELOC32",
	HUNK_ABSRELOC16:   "HUNK_ABSRELOC16",
	HUNK_PPC_CODE:     "HUNK_PPC_CODE",
	HUNK_RELRELOC26:   "HUNK_RELRELOC26",
}

// IDs returns every known block ID in ascending order.
func IDs() []ID {
	ids := make([]ID, 0, len(idNames))
	for id := range idNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (id ID) String() string {
	if n, ok := idNames[id]; ok {
		return n
	}
	return fmt.Sprintf("HUNK_%04d", uint32(id))
}

// IsSegment returns true if the ID begins a segment in an executable.
func (id ID) IsSegment() bool {
	switch id {
	case HUNK_CODE, HUNK_DATA, HUNK_BSS, HUNK_PPC_CODE:
		return true
	}
	return false
}

// isLoadSegExtra returns true if the ID is allowed to follow a segment block
// in an executable.
func (id ID) isLoadSegExtra() bool {
	switch id {
	case HUNK_ABSRELOC32, HUNK_RELOC32SHORT, HUNK_DEBUG, HUNK_SYMBOL, HUNK_NAME:
		return true
	}
	return false
}

// ExtType is the type of an entry in a HUNK_EXT block.
type ExtType uint8

// List of external symbol types.
const (
	EXT_SYMB      ExtType = 0
	EXT_DEF       ExtType = 1
	EXT_ABS       ExtType = 2
	EXT_RES       ExtType = 3
	EXT_ABSREF32  ExtType = 129
	EXT_ABSCOMMON ExtType = 130
	EXT_RELREF16  ExtType = 131
	EXT_RELREF8   ExtType = 132
	EXT_DEXT32    ExtType = 133
	EXT_DEXT16    ExtType = 134
	EXT_DEXT8     ExtType = 135
	EXT_RELREF32  ExtType = 136
	EXT_RELCOMMON ExtType = 137
	EXT_ABSREF16  ExtType = 138
	EXT_ABSREF8   ExtType = 139
	EXT_RELREF26  ExtType = 229
)

var extNames = map[ExtType]string{
	EXT_SYMB:      "EXT_SYMB",
	EXT_DEF:       "EXT_DEF",
	EXT_ABS:       "EXT_ABS",
	EXT_RES:       "EXT_RES",
	EXT_ABSREF32:  "EXT_ABSREF32",
	EXT_ABSCOMMON: "EXT_ABSCOMMON",
	EXT_RELREF16:  "EXT_RELREF16",
	EXT_RELREF8:   "EXT_RELREF8",
	EXT_DEXT32:    "EXT_DEXT32",
	EXT_DEXT16:    "EXT_DEXT16",
	EXT_DEXT8:     "EXT_DEXT8",
	EXT_RELREF32:  "EXT_RELREF32",
	EXT_RELCOMMON: "EXT_RELCOMMON",
	EXT_ABSREF16:  "EXT_ABSREF16",
	EXT_ABSREF8:   "EXT_ABSREF8",
	EXT_RELREF26:  "EXT_RELREF26",
}

func (t ExtType) String() string {
	if n, ok := extNames[t]; ok {
		return n
	}
	return fmt.Sprintf("EXT_%03d", uint8(t))
}

// IsReference returns true for the types that list reference offsets rather
// than define a value.
func (t ExtType) IsReference() bool {
	return t >= 0x80
}

// FileType is the kind of container found in a hunk file. It is decided by
// the first block in the file.
type FileType int

// List of file types.
const (
	TypeUnknown FileType = iota
	TypeLoadSeg
	TypeUnit
	TypeLib
)

func (t FileType) String() string {
	switch t {
	case TypeLoadSeg:
		return "executable"
	case TypeUnit:
		return "object unit"
	case TypeLib:
		return "library"
	}
	return "unknown"
}

// fileTypeFromID maps the ID of the first block in a file to the FileType.
func fileTypeFromID(id ID) FileType {
	switch id {
	case HUNK_HEADER:
		return TypeLoadSeg
	case HUNK_UNIT:
		return TypeUnit
	case HUNK_LIB:
		return TypeLib
	}
	return TypeUnknown
}
