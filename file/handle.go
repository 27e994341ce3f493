// Package file implements the file handle (C5): a read/write cursor over an
// inode, doing bounce-buffered sector I/O so partial-sector reads and writes
// never disturb the rest of a sector's content.
package file

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/inode"
	"github.com/kernfs/kernfs/kernerr"
)

// Handle wraps an open inode plus a cursor position. Multiple Handles may
// share the same underlying *inode.Inode (the Table guarantees that); each
// Handle has its own independent position.
type Handle struct {
	dev      *block.Device
	alloc    inode.Allocator
	table    *inode.Table
	ino      *inode.Inode
	position int64
	log      *logrus.Entry
}

// Open wraps ino (already opened through table) in a new file Handle
// positioned at the start of the file.
func Open(dev *block.Device, alloc inode.Allocator, table *inode.Table, ino *inode.Inode, log *logrus.Logger) *Handle {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handle{
		dev:   dev,
		alloc: alloc,
		table: table,
		ino:   ino,
		log:   log.WithField("component", "file"),
	}
}

// Length returns the inode's current logical size in bytes.
func (h *Handle) Length() int64 {
	return int64(h.ino.Disk.Length)
}

// Inumber returns the sector backing this handle's inode.
func (h *Handle) Inumber() uint32 {
	return h.ino.SelfSector
}

// Inode exposes the underlying inode, for callers (directory, resolver)
// that need to inspect or reopen it directly.
func (h *Handle) Inode() *inode.Inode {
	return h.ino
}

// DenyWrite disables writes through any handle on this file's inode until a
// matching AllowWrite.
func (h *Handle) DenyWrite() {
	h.ino.DenyWrite()
}

// AllowWrite reverses one prior DenyWrite.
func (h *Handle) AllowWrite() {
	h.ino.AllowWrite()
}

// Seek repositions the handle's cursor, as io.Seeker.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = h.position
	case io.SeekEnd:
		base = int64(h.ino.Disk.Length)
	default:
		return 0, fmt.Errorf("file: invalid whence %d", whence)
	}
	pos := base + offset
	if pos < 0 {
		return 0, fmt.Errorf("file: negative seek position %d", pos)
	}
	h.position = pos
	return pos, nil
}

// Tell returns the handle's current cursor position.
func (h *Handle) Tell() int64 {
	return h.position
}

// Read reads from the handle's current position, advancing it, as io.Reader.
func (h *Handle) Read(b []byte) (int, error) {
	n, err := h.ReadAt(b, h.position)
	h.position += int64(n)
	return n, err
}

// Write writes at the handle's current position, advancing it, as io.Writer.
func (h *Handle) Write(b []byte) (int, error) {
	n, err := h.WriteAt(b, h.position)
	if n > 0 {
		h.position += int64(n)
	}
	return n, err
}

// Close releases this handle's reference on the underlying inode.
func (h *Handle) Close() error {
	h.table.Close(h.ino)
	return nil
}

// ReadAt reads len(b) bytes starting at off, as io.ReaderAt. Reads that run
// past the file's current length are short, returning io.EOF.
func (h *Handle) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("file: negative offset %d", off)
	}
	length := int64(h.ino.Disk.Length)
	if off >= length {
		return 0, io.EOF
	}
	want := int64(len(b))
	if off+want > length {
		want = length - off
	}

	var n int64
	buf := make([]byte, block.SectorSize)
	for n < want {
		pos := off + n
		sectorOff := pos % block.SectorSize
		sec, err := inode.ByteToSector(h.dev, &h.ino.Disk, pos)
		if err != nil {
			return int(n), err
		}
		chunk := int64(block.SectorSize) - sectorOff
		if remain := want - n; chunk > remain {
			chunk = remain
		}
		if err := h.dev.ReadSector(sec, buf); err != nil {
			return int(n), err
		}
		copy(b[n:n+chunk], buf[sectorOff:sectorOff+chunk])
		n += chunk
	}
	if want < int64(len(b)) {
		return int(n), io.EOF
	}
	return int(n), nil
}

// WriteAt writes len(b) bytes starting at off, as io.WriterAt. A write that
// ends past the current length first extends the file; if that extend
// falls short of covering the whole write, WriteAt returns (-1,
// kernerr.ErrNoSpace) and the file is left at whatever shorter length the
// extend committed. A write while deny_write_cnt > 0 is a silent no-op
// returning (0, nil), matching write_at's defined behavior of returning 0.
func (h *Handle) WriteAt(b []byte, off int64) (int, error) {
	if h.ino.WritesDenied() {
		return 0, nil
	}
	if off < 0 {
		return -1, fmt.Errorf("file: negative offset %d", off)
	}
	if len(b) == 0 {
		return 0, nil
	}

	end := off + int64(len(b))
	if end > int64(h.ino.Disk.Length) {
		got, err := inode.Extend(h.dev, h.alloc, &h.ino.Disk, end)
		if err != nil {
			return -1, err
		}
		if got < end {
			return -1, kernerr.ErrNoSpace
		}
	}

	var n int64
	buf := make([]byte, block.SectorSize)
	for n < int64(len(b)) {
		pos := off + n
		sectorOff := pos % block.SectorSize
		sec, err := inode.ByteToSector(h.dev, &h.ino.Disk, pos)
		if err != nil {
			return int(n), err
		}
		chunk := int64(block.SectorSize) - sectorOff
		if remain := int64(len(b)) - n; chunk > remain {
			chunk = remain
		}
		if sectorOff == 0 && chunk == block.SectorSize {
			if err := h.dev.WriteSector(sec, b[n:n+chunk]); err != nil {
				return int(n), err
			}
		} else {
			if err := h.dev.ReadSector(sec, buf); err != nil {
				return int(n), err
			}
			copy(buf[sectorOff:sectorOff+chunk], b[n:n+chunk])
			if err := h.dev.WriteSector(sec, buf); err != nil {
				return int(n), err
			}
		}
		n += chunk
	}
	h.log.WithFields(logrus.Fields{"sector": h.ino.SelfSector, "bytes": n, "offset": off}).Trace("write_at")
	return int(n), nil
}
