package inode

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/block"
)

// Table is the process-wide set of open inodes, keyed by self-sector.
// Opening an already-open sector returns the same *Inode with its refcount
// bumped, so every holder of a sector observes the same mutable state — the
// single coarse lock held by the caller (see the concurrency model) is what
// makes that safe without any locking inside Table itself.
type Table struct {
	dev     *block.Device
	alloc   Allocator
	entries map[uint32]*Inode
	log     *logrus.Entry
}

// NewTable creates an empty open-inode table over dev, allocating and
// releasing sectors through alloc. log may be nil, in which case
// logrus.StandardLogger() is used.
func NewTable(dev *block.Device, alloc Allocator, log *logrus.Logger) *Table {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Table{
		dev:     dev,
		alloc:   alloc,
		entries: make(map[uint32]*Inode),
		log:     log.WithField("component", "inode"),
	}
}

// SetAllocator installs the allocator used to release sectors on deferred
// removal. Needed because the free-map's own backing inode must be opened
// through this table before the free-map itself is fully constructed (see
// freemap.Format), so the table is built first with a nil allocator and
// wired up once the free-map exists.
func (t *Table) SetAllocator(alloc Allocator) {
	t.alloc = alloc
}

// Open returns the in-memory handle for sector, reading its on-disk record
// the first time it is opened and incrementing the refcount on every
// subsequent call.
func (t *Table) Open(sector uint32) (*Inode, error) {
	if ino, ok := t.entries[sector]; ok {
		ino.OpenCnt++
		t.log.WithFields(logrus.Fields{"sector": sector, "open_cnt": ino.OpenCnt}).Trace("reopen inode")
		return ino, nil
	}
	d, err := readDisk(t.dev, block.Sector(sector))
	if err != nil {
		return nil, err
	}
	ino := &Inode{SelfSector: sector, OpenCnt: 1, Disk: *d}
	t.entries[sector] = ino
	t.log.WithField("sector", sector).Trace("open inode")
	return ino, nil
}

// Reopen increments ino's refcount, for a caller that duplicates a handle it
// already holds rather than looking the sector up again.
func (t *Table) Reopen(ino *Inode) {
	ino.OpenCnt++
	t.log.WithFields(logrus.Fields{"sector": ino.SelfSector, "open_cnt": ino.OpenCnt}).Trace("reopen inode")
}

// Close decrements ino's refcount. When it reaches zero the entry is
// dropped from the table, and if ino had been marked Removed, its index
// tree and its own sector are released to the free-map.
func (t *Table) Close(ino *Inode) {
	ino.OpenCnt--
	t.log.WithFields(logrus.Fields{"sector": ino.SelfSector, "open_cnt": ino.OpenCnt}).Trace("close inode")
	if ino.OpenCnt < 0 {
		panic(fmt.Sprintf("inode: open_cnt went negative on sector %d", ino.SelfSector))
	}
	if ino.OpenCnt > 0 {
		return
	}
	delete(t.entries, ino.SelfSector)
	if ino.Removed {
		Free(t.dev, t.alloc, &ino.Disk)
		release(t.alloc, block.Sector(ino.SelfSector))
		t.log.WithField("sector", ino.SelfSector).Debug("released removed inode")
	}
}

// Remove marks ino as removed. Actual release of its sectors is deferred
// until the last Close drops its refcount to zero.
func (t *Table) Remove(ino *Inode) {
	ino.Removed = true
	t.log.WithField("sector", ino.SelfSector).Debug("marked inode removed")
}

// WriteBack persists ino's current Disk record without closing it, used
// after in-place mutations that don't go through Extend/Free (none exist
// today, kept for parity with callers that want to force a flush).
func (t *Table) WriteBack(ino *Inode) {
	writeDisk(t.dev, &ino.Disk)
}
