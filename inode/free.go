package inode

import (
	"fmt"

	"github.com/kernfs/kernfs/block"
)

// Free releases every data and index sector held by d's tree back to alloc,
// walking double-indirect before single-indirect before direct — the mirror
// of Extend's build order, so that the *CurrUsage counters stay consistent
// with whatever remains of the tree at every step.
func Free(dev *block.Device, alloc Allocator, d *Disk) {
	freeDoubleIndirect(dev, alloc, d)
	freeIndirect(dev, alloc, d)
	freeDirect(alloc, d)
}

func release(alloc Allocator, sector block.Sector) {
	if err := alloc.Release(sector, 1); err != nil {
		panic(fmt.Errorf("inode: release sector %d: %w", sector, err))
	}
}

func freeDoubleIndirect(dev *block.Device, alloc Allocator, d *Disk) {
	if d.DindirCnt == 0 {
		return
	}
	lv1 := readPtrBlock(dev, block.Sector(d.Dindirect[0]))

	fullBlocks := int(d.DindirCurrUsage)
	partial := int(d.DindirLv2CurrUsage)
	total := fullBlocks
	if partial > 0 {
		total++
	}
	for i := 0; i < total; i++ {
		lv2Sector := block.Sector(lv1[i])
		n := PointersPerBlock
		if i == fullBlocks && partial > 0 {
			n = partial
		}
		lv2 := readPtrBlock(dev, lv2Sector)
		for j := 0; j < n; j++ {
			release(alloc, block.Sector(lv2[j]))
		}
		release(alloc, lv2Sector)
	}
	release(alloc, block.Sector(d.Dindirect[0]))

	d.DindirCnt = 0
	d.DindirCurrUsage = 0
	d.DindirLv2CurrUsage = 0
	d.Dindirect[0] = 0
}

func freeIndirect(dev *block.Device, alloc Allocator, d *Disk) {
	if d.IndirCnt == 0 {
		return
	}
	blk := readPtrBlock(dev, block.Sector(d.Indirect[0]))
	for i := 0; i < int(d.IndirCurrUsage); i++ {
		release(alloc, block.Sector(blk[i]))
	}
	release(alloc, block.Sector(d.Indirect[0]))

	d.IndirCnt = 0
	d.IndirCurrUsage = 0
	d.Indirect[0] = 0
}

func freeDirect(alloc Allocator, d *Disk) {
	for i := uint32(0); i < d.DirCnt; i++ {
		release(alloc, block.Sector(d.Direct[i]))
		d.Direct[i] = 0
	}
	d.DirCnt = 0
}
