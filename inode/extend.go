package inode

import (
	"errors"
	"fmt"

	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/kernerr"
)

// allocFn tries to obtain one zeroed data sector. ok is false exactly when
// the allocator is out of space; any other allocator failure panics, since
// it indicates device-level corruption rather than ordinary exhaustion.
type allocFn func() (block.Sector, bool)

// Extend grows d's index tree to cover newLength bytes. newLength must be
// >= d.Length; contraction is not supported here (see Free for shrinking to
// zero on removal). On success it returns newLength. If the allocator runs
// out of space partway through, it commits as many whole sectors as were
// obtained, sets d.Length to newLength minus 512 bytes for every sector it
// could not obtain, writes the record back, and returns the shorter length — callers must
// treat a returned length shorter than requested as failure of their own
// operation (see kernerr.ErrNoSpace).
func Extend(dev *block.Device, alloc Allocator, d *Disk, newLength int64) (int64, error) {
	if newLength < int64(d.Length) {
		return 0, fmt.Errorf("inode: extend called with shorter length (have %d, want %d)", d.Length, newLength)
	}
	need := int(sectorsFor(newLength) - sectorsFor(int64(d.Length)))
	if need <= 0 {
		d.Length = uint32(newLength)
		writeDisk(dev, d)
		return newLength, nil
	}

	alloc1 := func() (block.Sector, bool) {
		sec, err := alloc.Allocate(1)
		if err != nil {
			if errors.Is(err, kernerr.ErrNoSpace) {
				return 0, false
			}
			panic(fmt.Errorf("inode: allocate sector: %w", err))
		}
		zeroSector(dev, sec)
		return sec, true
	}

	need = extendDirect(d, alloc1, need)
	need = extendIndirect(dev, d, alloc1, need)
	need = extendDoubleIndirect(dev, d, alloc1, need)

	achieved := newLength - int64(need)*SectorSize
	d.Length = uint32(achieved)
	writeDisk(dev, d)
	return achieved, nil
}

func extendDirect(d *Disk, alloc allocFn, need int) int {
	for need > 0 && d.DirCnt < DirectCount {
		sec, ok := alloc()
		if !ok {
			return need
		}
		d.Direct[d.DirCnt] = uint32(sec)
		d.DirCnt++
		need--
	}
	return need
}

func extendIndirect(dev *block.Device, d *Disk, alloc allocFn, need int) int {
	if need <= 0 || (d.IndirCnt == 1 && d.IndirCurrUsage >= PointersPerBlock) {
		return need
	}

	var blk ptrBlock
	if d.IndirCnt == 0 {
		sec, ok := alloc()
		if !ok {
			return need
		}
		d.Indirect[0] = uint32(sec)
		d.IndirCnt = 1
	} else {
		blk = readPtrBlock(dev, block.Sector(d.Indirect[0]))
	}

	for need > 0 && d.IndirCurrUsage < PointersPerBlock {
		sec, ok := alloc()
		if !ok {
			break
		}
		blk[d.IndirCurrUsage] = uint32(sec)
		d.IndirCurrUsage++
		need--
	}
	writePtrBlock(dev, block.Sector(d.Indirect[0]), blk)
	return need
}

func extendDoubleIndirect(dev *block.Device, d *Disk, alloc allocFn, need int) int {
	if need <= 0 || (d.DindirCnt == 1 && d.DindirCurrUsage >= PointersPerBlock) {
		return need
	}

	var lv1 ptrBlock
	if d.DindirCnt == 0 {
		sec, ok := alloc()
		if !ok {
			return need
		}
		d.Dindirect[0] = uint32(sec)
		d.DindirCnt = 1
	} else {
		lv1 = readPtrBlock(dev, block.Sector(d.Dindirect[0]))
	}

	for need > 0 && d.DindirCurrUsage < PointersPerBlock {
		var lv2 ptrBlock
		var lv2Sector block.Sector
		if d.DindirLv2CurrUsage == 0 {
			sec, ok := alloc()
			if !ok {
				break
			}
			lv2Sector = sec
			lv1[d.DindirCurrUsage] = uint32(sec)
		} else {
			lv2Sector = block.Sector(lv1[d.DindirCurrUsage])
			lv2 = readPtrBlock(dev, lv2Sector)
		}

		stalled := false
		for need > 0 && d.DindirLv2CurrUsage < PointersPerBlock {
			sec, ok := alloc()
			if !ok {
				stalled = true
				break
			}
			lv2[d.DindirLv2CurrUsage] = uint32(sec)
			d.DindirLv2CurrUsage++
			need--
		}
		writePtrBlock(dev, lv2Sector, lv2)
		if d.DindirLv2CurrUsage == PointersPerBlock {
			d.DindirCurrUsage++
			d.DindirLv2CurrUsage = 0
		}
		if stalled {
			break
		}
	}
	writePtrBlock(dev, block.Sector(d.Dindirect[0]), lv1)
	return need
}
