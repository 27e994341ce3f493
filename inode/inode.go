package inode

import (
	"fmt"

	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/kernerr"
)

// Inode is the in-memory handle on one on-disk inode_disk record, shared by
// every caller that has it open. The Table is the only thing that creates
// or destroys these; callers reach one through Table.Open/Table.Reopen and
// release it through Table.Close.
type Inode struct {
	SelfSector   uint32
	OpenCnt      int
	DenyWriteCnt int
	Removed      bool
	Disk         Disk
}

// Create allocates sector's index tree to hold length bytes, writes the new
// record, and returns the decoded Disk record. On allocation failure partway
// through growing to length, the partially built tree is torn back down via
// Free and kernerr.ErrNoSpace is returned — a failed create leaves no
// sectors behind beyond the ones the caller itself reserved for sector.
func Create(dev *block.Device, alloc Allocator, sector uint32, length int64, isDir bool) (*Disk, error) {
	d := New(sector, isDir)
	got, err := Extend(dev, alloc, d, length)
	if err != nil {
		return nil, err
	}
	if got < length {
		Free(dev, alloc, d)
		return nil, kernerr.ErrNoSpace
	}
	return d, nil
}

// DenyWrite disables writes through any handle on this inode until a
// matching AllowWrite. The assertion mirrors the C ASSERT(deny_write_cnt <=
// open_cnt) this design is built on: violating it means a caller is tracking
// denies against an inode it does not hold an open reference to.
func (i *Inode) DenyWrite() {
	i.DenyWriteCnt++
	if i.DenyWriteCnt > i.OpenCnt {
		panic(fmt.Sprintf("inode: deny_write_cnt (%d) exceeds open_cnt (%d) on sector %d", i.DenyWriteCnt, i.OpenCnt, i.SelfSector))
	}
}

// AllowWrite reverses one prior DenyWrite. Calling it without a matching
// DenyWrite in effect is a programmer error and panics.
func (i *Inode) AllowWrite() {
	if i.DenyWriteCnt <= 0 {
		panic(fmt.Sprintf("inode: allow_write with no outstanding deny_write on sector %d", i.SelfSector))
	}
	i.DenyWriteCnt--
}

// WritesDenied reports whether any write to this inode should currently be
// refused.
func (i *Inode) WritesDenied() bool {
	return i.DenyWriteCnt > 0
}
