package inode

import (
	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/kernerr"
)

// ByteToSector maps a byte offset within d's current length to the sector
// holding it, walking direct, single-indirect or double-indirect ranges as
// needed. It returns kernerr.ErrNotPresent for any offset outside
// [0, d.Length) or beyond the tree's maximum addressable range.
func ByteToSector(dev *block.Device, d *Disk, pos int64) (block.Sector, error) {
	if pos < 0 || pos >= int64(d.Length) {
		return 0, kernerr.ErrNotPresent
	}

	idx := pos / SectorSize

	switch {
	case idx < DirectCount:
		return block.Sector(d.Direct[idx]), nil

	case idx < DirectCount+PointersPerBlock:
		if d.IndirCnt == 0 {
			return 0, kernerr.ErrNotPresent
		}
		blk := readPtrBlock(dev, block.Sector(d.Indirect[0]))
		return block.Sector(blk[idx-DirectCount]), nil

	case idx < int64(MaxDataSectors):
		if d.DindirCnt == 0 {
			return 0, kernerr.ErrNotPresent
		}
		rel := idx - DirectCount - PointersPerBlock
		lv1Idx := rel / PointersPerBlock
		lv2Idx := rel % PointersPerBlock
		lv1 := readPtrBlock(dev, block.Sector(d.Dindirect[0]))
		lv2 := readPtrBlock(dev, block.Sector(lv1[lv1Idx]))
		return block.Sector(lv2[lv2Idx]), nil

	default:
		return 0, kernerr.ErrNotPresent
	}
}
