// Package directory implements the directory layer (C6): a directory is an
// inode whose payload is a dense array of fixed-size dir_entry records,
// searched linearly and mutated in place.
package directory

import (
	"bytes"
	"encoding/binary"
)

// NameMax is the longest file name component this filesystem accepts.
const NameMax = 14

// entrySize is the on-disk size of one dir_entry: a 4-byte in_use flag, a
// 4-byte inode sector, and a 16-byte name field (14 characters, a NUL
// terminator, and one padding byte to round the record out to 24 bytes).
const entrySize = 4 + 4 + 16

// DefaultEntryCapacity is the number of entries a freshly created directory
// (via mkdir) is sized to hold, per the top-level filesystem API's dir_create call.
const DefaultEntryCapacity = 16

// Entry is the decoded form of one directory record.
type Entry struct {
	InUse  bool
	Sector uint32
	Name   string
}

func encodeEntry(e Entry) []byte {
	buf := make([]byte, entrySize)
	if e.InUse {
		binary.LittleEndian.PutUint32(buf[0:4], 1)
	}
	binary.LittleEndian.PutUint32(buf[4:8], e.Sector)
	copy(buf[8:8+NameMax], e.Name)
	// buf[8+len(name)] onward is already zero: NUL terminator plus padding.
	return buf
}

func decodeEntry(buf []byte) Entry {
	inUse := binary.LittleEndian.Uint32(buf[0:4]) != 0
	sector := binary.LittleEndian.Uint32(buf[4:8])
	nameField := buf[8 : 8+NameMax+1]
	end := bytes.IndexByte(nameField, 0)
	if end < 0 {
		end = len(nameField)
	}
	return Entry{InUse: inUse, Sector: sector, Name: string(nameField[:end])}
}
