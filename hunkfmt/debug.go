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

package hunkfmt

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/cryptobyte"

	"github.com/jetsetilly/gohunk/faults"
)

// the tags of the debug formats that are understood
const (
	debugTagLine = "LINE"
	debugTagHead = "HEAD"
)

// signature following the HEAD tag
const debugHeadSignature = "DBGV01\x00\x00"

// DebugInfo is the decoded content of a HUNK_DEBUG block.
type DebugInfo interface {
	Tag() string
	Base() uint32
}

// DebugLineEntry is a single line entry of a LINE debug block. The line number
// is in the low 24 bits of SrcLine and flags are in the top 8 bits.
type DebugLineEntry struct {
	Offset  uint32
	SrcLine uint32
}

// DebugLineInfo is a LINE debug block, as created by SAS/C.
type DebugLineInfo struct {
	SrcFile    string
	BaseOffset uint32
	Entries    []DebugLineEntry
}

func (d *DebugLineInfo) Tag() string  { return debugTagLine }
func (d *DebugLineInfo) Base() uint32 { return d.BaseOffset }

func (d *DebugLineInfo) String() string {
	return fmt.Sprintf("%s: %s (%d entries)", debugTagLine, d.SrcFile, len(d.Entries))
}

// DebugAnyInfo is a debug block that is not interpreted. For HEAD blocks the
// data follows the signature.
type DebugAnyInfo struct {
	DebugTag   string
	BaseOffset uint32
	Data       []byte
}

func (d *DebugAnyInfo) Tag() string  { return d.DebugTag }
func (d *DebugAnyInfo) Base() uint32 { return d.BaseOffset }

func (d *DebugAnyInfo) String() string {
	return fmt.Sprintf("%q (%d bytes)", d.DebugTag, len(d.Data))
}

// DecodeDebug decodes the data of a HUNK_DEBUG block. Returns nil if the data
// is too short to contain a debug tag.
func DecodeDebug(data []byte) (DebugInfo, error) {
	if len(data) < 12 {
		return nil, nil
	}

	s := cryptobyte.String(data)

	var base uint32
	var tag []byte
	s.ReadUint32(&base)
	s.ReadBytes(&tag, 4)

	switch string(tag) {
	case debugTagLine:
		var units uint32
		s.ReadUint32(&units)

		var name []byte
		if !s.ReadBytes(&name, int(units)*4) {
			return nil, faults.ShortRead(12, int(units)*4, len(s))
		}
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}

		d := &DebugLineInfo{
			SrcFile:    string(name),
			BaseOffset: base,
		}

		// trailing bytes that don't make a whole entry are ignored
		for len(s) >= 8 {
			var e DebugLineEntry
			s.ReadUint32(&e.SrcLine)
			s.ReadUint32(&e.Offset)
			d.Entries = append(d.Entries, e)
		}

		return d, nil

	case debugTagHead:
		var sig []byte
		if !s.ReadBytes(&sig, len(debugHeadSignature)) {
			return nil, faults.ShortRead(8, len(debugHeadSignature), len(s))
		}
		if string(sig) != debugHeadSignature {
			return nil, faults.Malformed("debug HEAD signature is %q", sig)
		}
		return &DebugAnyInfo{
			DebugTag:   debugTagHead,
			BaseOffset: base,
			Data:       append([]byte{}, s...),
		}, nil
	}

	return &DebugAnyInfo{
		DebugTag:   string(tag),
		BaseOffset: base,
		Data:       append([]byte{}, s...),
	}, nil
}

// EncodeDebug is the reverse of DecodeDebug.
func EncodeDebug(info DebugInfo) ([]byte, error) {
	if len(info.Tag()) != 4 {
		return nil, faults.Mismatch("debug tag %q is not four bytes", info.Tag())
	}

	b := cryptobyte.NewBuilder(nil)
	b.AddUint32(info.Base())
	b.AddBytes([]byte(info.Tag()))

	switch d := info.(type) {
	case *DebugLineInfo:
		name := []byte(d.SrcFile)
		units := (len(name) + 3) / 4
		b.AddUint32(uint32(units))
		b.AddBytes(name)
		b.AddBytes(make([]byte, units*4-len(name)))
		for _, e := range d.Entries {
			b.AddUint32(e.SrcLine)
			b.AddUint32(e.Offset)
		}
	case *DebugAnyInfo:
		if d.DebugTag == debugTagHead {
			b.AddBytes([]byte(debugHeadSignature))
		}
		b.AddBytes(d.Data)
	default:
		return nil, faults.Mismatch("unsupported debug info type %T", info)
	}

	return b.Bytes()
}
