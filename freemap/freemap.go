// Package freemap implements the persistent free-sector bitmap (C2): a
// single bitmap covering every sector of the device, itself stored as the
// payload of an ordinary inode living at the fixed free-map sector. There is
// no write-back cache — every allocate or release rewrites the whole bitmap
// payload immediately, since crash consistency beyond immediate-write
// semantics is out of scope (spec.md §1 Non-goals).
package freemap

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/inode"
	"github.com/kernfs/kernfs/kernerr"
)

// SelfSector is the fixed sector holding the free-map's own inode record.
const SelfSector = 0

// RootSector is the fixed sector holding the root directory's inode record,
// reserved here too since the free-map must never hand it out.
const RootSector = 1

// FreeMap is the in-memory bitmap plus the on-disk inode it is persisted
// through. It implements inode.Allocator, so every other package that needs
// to allocate or release sectors (inode itself, directory, the top-level
// filesystem) depends only on that small interface.
type FreeMap struct {
	dev   *block.Device
	table *inode.Table
	ino   *inode.Inode
	bits  *bitmapView
	count uint32
	log   *logrus.Entry
	id    uuid.UUID
}

var _ inode.Allocator = (*FreeMap)(nil)

// Format creates a brand-new free map covering count sectors, persists it
// through table (which must not yet have sector 0 or sector 1 open), and
// returns it ready for use. Sector 0 (the free map's own inode) and sector 1
// (the root directory's inode) are marked used before the free map's own
// on-disk inode exists — that ordering is required: the free map cannot
// allocate blocks for its own backing inode from a free map that does not
// yet exist on disk. Allocate/Release update the in-memory bitmap
// immediately either way; only once this function's inode.Create call
// succeeds does the free map persist its bitmap payload for the first time.
func Format(dev *block.Device, table *inode.Table, count uint32, log *logrus.Logger) (*FreeMap, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if count < 2 {
		return nil, fmt.Errorf("freemap: device must have at least 2 sectors, got %d", count)
	}

	view := newBitmapView(count)
	view.markUsed(SelfSector)
	view.markUsed(RootSector)

	fm := &FreeMap{
		dev:   dev,
		table: table,
		bits:  view,
		count: count,
		log:   log.WithField("component", "freemap"),
		id:    newVolumeID(),
	}

	payload := view.bytes()
	d, err := inode.Create(dev, fm, SelfSector, int64(len(payload)), false)
	if err != nil {
		return nil, fmt.Errorf("freemap: create backing inode: %w", err)
	}
	copy(d.Padding[:len(fm.id)], fm.id[:])
	inode.WriteDisk(dev, d)

	ino, err := table.Open(SelfSector)
	if err != nil {
		return nil, fmt.Errorf("freemap: open backing inode after create: %w", err)
	}
	fm.ino = ino

	if err := fm.flush(); err != nil {
		return nil, fmt.Errorf("freemap: initial flush: %w", err)
	}
	fm.log.WithFields(logrus.Fields{"sectors": count, "volume_id": fm.id}).Debug("formatted free map")
	return fm, nil
}

// Open loads an existing free map's bitmap from its backing inode.
func Open(dev *block.Device, table *inode.Table, count uint32, log *logrus.Logger) (*FreeMap, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ino, err := table.Open(SelfSector)
	if err != nil {
		return nil, fmt.Errorf("freemap: open backing inode: %w", err)
	}

	fm := &FreeMap{
		dev:   dev,
		table: table,
		ino:   ino,
		count: count,
		log:   log.WithField("component", "freemap"),
	}
	copy(fm.id[:], ino.Disk.Padding[:len(fm.id)])

	payload, err := fm.readPayload()
	if err != nil {
		return nil, fmt.Errorf("freemap: read bitmap payload: %w", err)
	}
	fm.bits = bitmapViewFromBytes(count, payload)
	return fm, nil
}

// VolumeID returns the volume identifier stamped at Format time.
func (fm *FreeMap) VolumeID() uuid.UUID {
	return fm.id
}

// TotalSectors returns the device's total sector count this free map covers.
func (fm *FreeMap) TotalSectors() uint32 {
	return fm.count
}

// FreeSectors returns the number of currently-unallocated sectors, for
// diagnostic tools like cmd/fsck.
func (fm *FreeMap) FreeSectors() uint32 {
	return fm.bits.freeCount()
}

// Close flushes the bitmap and releases the free map's own reference on its
// backing inode.
func (fm *FreeMap) Close() {
	if err := fm.flush(); err != nil {
		fm.log.WithError(err).Warn("flush free map on close")
	}
	fm.table.Close(fm.ino)
}

// Allocate finds the first run of n contiguous free sectors, marks them
// used, and rewrites the whole bitmap payload immediately.
func (fm *FreeMap) Allocate(n int) (block.Sector, error) {
	start, ok := fm.bits.firstFreeRun(n)
	if !ok {
		return 0, kernerr.ErrNoSpace
	}
	for i := 0; i < n; i++ {
		fm.bits.markUsed(uint32(start) + uint32(i))
	}
	if err := fm.flush(); err != nil {
		return 0, err
	}
	fm.log.WithFields(logrus.Fields{"sector": start, "count": n}).Trace("allocated sectors")
	return block.Sector(start), nil
}

// Release clears n sectors starting at start and flushes immediately.
func (fm *FreeMap) Release(start block.Sector, n int) error {
	for i := 0; i < n; i++ {
		fm.bits.markFree(uint32(start) + uint32(i))
	}
	if err := fm.flush(); err != nil {
		return err
	}
	fm.log.WithFields(logrus.Fields{"sector": start, "count": n}).Trace("released sectors")
	return nil
}

// flush writes the bitmap payload back through the free map's own inode. It
// is a no-op during the bootstrap window before Format has finished
// creating the backing inode (fm.ino == nil): the in-memory bitmap is still
// authoritative, and the very first real write happens once Format calls it
// explicitly after the backing inode exists.
func (fm *FreeMap) flush() error {
	if fm.ino == nil {
		return nil
	}
	return fm.writePayload(fm.bits.bytes())
}

func newVolumeID() uuid.UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		// uuid.NewRandom only fails if the system CSPRNG is unavailable,
		// which this filesystem core cannot recover from meaningfully.
		panic(fmt.Errorf("freemap: generate volume id: %w", err))
	}
	return id
}
