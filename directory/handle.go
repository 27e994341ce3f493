package directory

import (
	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/inode"
	"github.com/kernfs/kernfs/kernerr"
)

// Handle is an open directory: an inode known to hold is_dir = true, plus a
// byte-offset cursor for Readdir iteration.
type Handle struct {
	dev    *block.Device
	alloc  inode.Allocator
	table  *inode.Table
	ino    *inode.Inode
	cursor int64
	log    *logrus.Entry
}

// Open wraps an already-opened directory inode in a Handle.
func Open(dev *block.Device, alloc inode.Allocator, table *inode.Table, ino *inode.Inode, log *logrus.Logger) *Handle {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handle{
		dev:   dev,
		alloc: alloc,
		table: table,
		ino:   ino,
		log:   log.WithField("component", "directory"),
	}
}

// Inode exposes the underlying inode.
func (h *Handle) Inode() *inode.Inode {
	return h.ino
}

// Inumber returns the sector backing this directory's inode.
func (h *Handle) Inumber() uint32 {
	return h.ino.SelfSector
}

// Close releases this handle's reference on the underlying inode.
func (h *Handle) Close() error {
	h.table.Close(h.ino)
	return nil
}

func (h *Handle) numEntries() int {
	return int(h.ino.Disk.Length) / entrySize
}

func (h *Handle) readEntry(idx int) (Entry, error) {
	buf := make([]byte, entrySize)
	if err := readAt(h.dev, &h.ino.Disk, int64(idx)*entrySize, buf); err != nil {
		return Entry{}, err
	}
	return decodeEntry(buf), nil
}

func (h *Handle) writeEntry(idx int, e Entry) error {
	return writeAt(h.dev, &h.ino.Disk, int64(idx)*entrySize, encodeEntry(e))
}

// Lookup does a linear scan for name among in-use entries, returning the
// sector of its inode.
func (h *Handle) Lookup(name string) (uint32, error) {
	if name == "" {
		return 0, kernerr.ErrInvalidName
	}
	n := h.numEntries()
	for i := 0; i < n; i++ {
		e, err := h.readEntry(i)
		if err != nil {
			return 0, err
		}
		if e.InUse && e.Name == name {
			return e.Sector, nil
		}
	}
	return 0, kernerr.ErrNoSuchEntry
}

// Add inserts a new entry mapping name to sector, reusing the first free
// slot if one exists, or appending (extending the directory's backing file
// by one entry) otherwise.
func (h *Handle) Add(name string, sector uint32) error {
	if name == "" || len(name) > NameMax {
		return kernerr.ErrInvalidName
	}
	n := h.numEntries()
	freeIdx := -1
	for i := 0; i < n; i++ {
		e, err := h.readEntry(i)
		if err != nil {
			return err
		}
		if e.InUse {
			if e.Name == name {
				return kernerr.ErrAlreadyExists
			}
		} else if freeIdx == -1 {
			freeIdx = i
		}
	}

	entry := Entry{InUse: true, Sector: sector, Name: name}
	if freeIdx >= 0 {
		return h.writeEntry(freeIdx, entry)
	}

	newLength := int64(n+1) * entrySize
	got, err := inode.Extend(h.dev, h.alloc, &h.ino.Disk, newLength)
	if err != nil {
		return err
	}
	if got < newLength {
		return kernerr.ErrNoSpace
	}
	return h.writeEntry(n, entry)
}

// Remove finds name's entry, refuses to remove a non-empty or busy
// directory, clears the entry, and marks the target inode removed (actual
// release is deferred to the target's last Close).
func (h *Handle) Remove(name string) error {
	if name == "" {
		return kernerr.ErrInvalidName
	}
	n := h.numEntries()
	idx := -1
	var target Entry
	for i := 0; i < n; i++ {
		e, err := h.readEntry(i)
		if err != nil {
			return err
		}
		if e.InUse && e.Name == name {
			idx, target = i, e
			break
		}
	}
	if idx == -1 {
		return kernerr.ErrNoSuchEntry
	}

	targetIno, err := h.table.Open(target.Sector)
	if err != nil {
		return err
	}

	if targetIno.Disk.IsDir {
		sub := &Handle{dev: h.dev, alloc: h.alloc, table: h.table, ino: targetIno, log: h.log}
		empty, err := sub.isEmpty()
		if err != nil {
			h.table.Close(targetIno)
			return err
		}
		// Any in-use entry besides "." and ".." refuses removal outright,
		// regardless of whether that entry's own inode has itself been
		// marked removed elsewhere.
		if !empty {
			h.table.Close(targetIno)
			return kernerr.ErrDirNotEmpty
		}
		// open_cnt > 1 here means some other holder besides the reference
		// we just took has this directory open — forbid removing a
		// directory that is someone's cwd or otherwise in use.
		if targetIno.OpenCnt > 1 {
			h.table.Close(targetIno)
			return kernerr.ErrBusy
		}
	}

	if err := h.writeEntry(idx, Entry{}); err != nil {
		h.table.Close(targetIno)
		return err
	}
	h.table.Remove(targetIno)
	h.table.Close(targetIno)
	return nil
}

func (h *Handle) isEmpty() (bool, error) {
	n := h.numEntries()
	for i := 0; i < n; i++ {
		e, err := h.readEntry(i)
		if err != nil {
			return false, err
		}
		if e.InUse && e.Name != "." && e.Name != ".." {
			return false, nil
		}
	}
	return true, nil
}

// Readdir returns the next entry name not equal to "." or "..", advancing
// the handle's cursor, or ok=false once every entry has been visited.
func (h *Handle) Readdir() (name string, ok bool, err error) {
	n := h.numEntries()
	for {
		idx := int(h.cursor / entrySize)
		if idx >= n {
			return "", false, nil
		}
		e, rerr := h.readEntry(idx)
		if rerr != nil {
			return "", false, rerr
		}
		h.cursor += entrySize
		if e.InUse && e.Name != "." && e.Name != ".." {
			return e.Name, true, nil
		}
	}
}

// GetParent returns the sector of this directory's parent ("..").
func (h *Handle) GetParent() (uint32, error) {
	return h.Lookup("..")
}
