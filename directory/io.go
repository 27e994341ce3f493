package directory

import (
	"github.com/kernfs/kernfs/block"
	"github.com/kernfs/kernfs/inode"
)

// readAt and writeAt move bytes through an inode's index tree the same
// bounce-buffered way file.Handle does, but operate directly on an
// *inode.Disk rather than a registered *inode.Inode — dir_create needs to
// stamp the "." and ".." entries before the new directory's inode has been
// opened through the table at all.

func readAt(dev *block.Device, d *inode.Disk, off int64, buf []byte) error {
	var n int64
	tmp := make([]byte, block.SectorSize)
	for n < int64(len(buf)) {
		pos := off + n
		sectorOff := pos % block.SectorSize
		sec, err := inode.ByteToSector(dev, d, pos)
		if err != nil {
			return err
		}
		if err := dev.ReadSector(sec, tmp); err != nil {
			return err
		}
		chunk := int64(block.SectorSize) - sectorOff
		if remain := int64(len(buf)) - n; chunk > remain {
			chunk = remain
		}
		copy(buf[n:n+chunk], tmp[sectorOff:sectorOff+chunk])
		n += chunk
	}
	return nil
}

func writeAt(dev *block.Device, d *inode.Disk, off int64, data []byte) error {
	var n int64
	tmp := make([]byte, block.SectorSize)
	for n < int64(len(data)) {
		pos := off + n
		sectorOff := pos % block.SectorSize
		sec, err := inode.ByteToSector(dev, d, pos)
		if err != nil {
			return err
		}
		chunk := int64(block.SectorSize) - sectorOff
		if remain := int64(len(data)) - n; chunk > remain {
			chunk = remain
		}
		if sectorOff == 0 && chunk == block.SectorSize {
			if err := dev.WriteSector(sec, data[n:n+chunk]); err != nil {
				return err
			}
		} else {
			if err := dev.ReadSector(sec, tmp); err != nil {
				return err
			}
			copy(tmp[sectorOff:sectorOff+chunk], data[n:n+chunk])
			if err := dev.WriteSector(sec, tmp); err != nil {
				return err
			}
		}
		n += chunk
	}
	return nil
}
